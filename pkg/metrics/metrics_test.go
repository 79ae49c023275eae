package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.DocsIngestedTotal.Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(a.DocsIngestedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DocsIngestedTotal))
}

func TestLabelledCollectors(t *testing.T) {
	m := New()
	m.BuildsTotal.WithLabelValues("Version1", "ok").Inc()
	m.ArtifactBytes.WithLabelValues("Version1", "compressed").Set(1024)
	m.ObserveStage("Version1", "assemble", 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BuildsTotal.WithLabelValues("Version1", "ok")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.ArtifactBytes.WithLabelValues("Version1", "compressed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestHandlerAndTextfile(t *testing.T) {
	m := New()
	m.DictionaryTerms.WithLabelValues("Version2").Set(42)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cranfield_dictionary_terms{variant="Version2"} 42`)

	path := filepath.Join(t.TempDir(), "cranfield.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "cranfield_dictionary_terms"))
}
