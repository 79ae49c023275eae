package segment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/assembler"
)

// Artifacts describes the two committed files of one index variant.
type Artifacts struct {
	UncompressedPath  string
	CompressedPath    string
	UncompressedBytes int64
	CompressedBytes   int64
	// Checksum is the xxhash64 of the compressed artifact, hex encoded.
	Checksum string
}

// Writer commits artifact pairs into one output directory.
type Writer struct {
	dataDir string
	rename  func(oldpath, newpath string) error
}

// NewWriter creates a Writer that writes artifacts into the given directory.
func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir, rename: os.Rename}
}

// Checksum is the hex xxhash64 of an artifact's bytes.
func Checksum(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

func UncompressedName(variant string) string {
	return fmt.Sprintf("Index_%s.uncompress.txt", variant)
}

func CompressedName(variant string) string {
	return fmt.Sprintf("Index_%s.compressed.txt", variant)
}

// Write serialises both forms to .tmp files, syncs them, then renames them
// into place. If any step fails the previous pair, if there was one, is left
// as it was and no new file remains.
func (w *Writer) Write(variant string, u *assembler.Uncompressed, c *assembler.Compressed) (*Artifacts, error) {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var plain, packed bytes.Buffer
	if err := WriteUncompressed(&plain, u); err != nil {
		return nil, fmt.Errorf("serialising uncompressed index: %w", err)
	}
	if err := WriteCompressed(&packed, c); err != nil {
		return nil, fmt.Errorf("serialising compressed index: %w", err)
	}

	art := &Artifacts{
		UncompressedPath:  filepath.Join(w.dataDir, UncompressedName(variant)),
		CompressedPath:    filepath.Join(w.dataDir, CompressedName(variant)),
		UncompressedBytes: int64(plain.Len()),
		CompressedBytes:   int64(packed.Len()),
		Checksum:          Checksum(packed.Bytes()),
	}

	targets := []string{art.UncompressedPath, art.CompressedPath}
	for _, target := range targets {
		if info, err := os.Lstat(target); err == nil && !info.Mode().IsRegular() {
			return nil, fmt.Errorf("artifact target %s is not a regular file", target)
		}
	}

	tmps := make([]string, 0, len(targets))
	cleanup := func() {
		for _, t := range tmps {
			os.Remove(t)
		}
	}
	for i, data := range [][]byte{plain.Bytes(), packed.Bytes()} {
		tmp := targets[i] + ".tmp"
		tmps = append(tmps, tmp)
		if err := writeSynced(tmp, data); err != nil {
			cleanup()
			return nil, err
		}
	}
	if err := w.commit(targets, tmps); err != nil {
		cleanup()
		return nil, err
	}
	return art, nil
}

// commit renames every temp onto its target. Existing targets are moved
// aside first; if any rename fails, the targets already replaced are put
// back so the pair on disk is either all old or all new.
func (w *Writer) commit(targets, tmps []string) error {
	backups := make([]string, 0, len(targets))
	rollback := func() {
		for i := len(backups) - 1; i >= 0; i-- {
			os.Remove(targets[i])
			if backups[i] != "" {
				os.Rename(backups[i], targets[i])
			}
		}
	}
	for i, target := range targets {
		backup := ""
		if _, err := os.Lstat(target); err == nil {
			backup = target + ".prev"
			if err := w.rename(target, backup); err != nil {
				rollback()
				return fmt.Errorf("moving aside %s: %w", filepath.Base(target), err)
			}
		}
		if err := w.rename(tmps[i], target); err != nil {
			if backup != "" {
				os.Rename(backup, target)
			}
			rollback()
			return fmt.Errorf("renaming %s: %w", filepath.Base(target), err)
		}
		backups = append(backups, backup)
	}
	for _, b := range backups {
		if b != "" {
			os.Remove(b)
		}
	}
	return nil
}

func writeSynced(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", filepath.Base(path), cerr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	return nil
}
