package backup

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/tally/pkg/core"
)

type stagedAsset struct {
	name string
	file string
}

// Restore loads an archive into the stores. With replaceExisting every note
// and asset is removed first; otherwise notes whose id already exists are
// skipped. Nothing is mutated unless the archive has both metadata and notes.
func (m *Manager) Restore(ctx context.Context, r io.ReaderAt, size int64, replaceExisting bool) RestoreResult {
	if !m.acquire() {
		return RestoreResult{Message: "restore failed: " + core.ErrBusy.Error(), Err: core.ErrBusy}
	}
	defer m.release()

	res, err := m.restore(ctx, r, size, replaceExisting)
	if err != nil {
		m.logger.Error("restore failed", "error", err)
		res.Success = false
		res.Message = "restore failed: " + err.Error()
		res.Err = err
		return res
	}
	m.logger.Info("restore complete",
		"replace", replaceExisting,
		"notes", res.NoteCount,
		"skipped_notes", res.SkippedNotes,
		"images", res.ImageCount,
		"skipped_images", res.SkippedImages,
	)
	return res
}

// RestoreFile is Restore over a file on disk.
func (m *Manager) RestoreFile(ctx context.Context, path string, replaceExisting bool) RestoreResult {
	f, err := os.Open(path)
	if err != nil {
		return RestoreResult{Message: "restore failed: " + err.Error(), Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return RestoreResult{Message: "restore failed: " + err.Error(), Err: err}
	}
	return m.Restore(ctx, f, info.Size(), replaceExisting)
}

func (m *Manager) restore(ctx context.Context, r io.ReaderAt, size int64, replace bool) (RestoreResult, error) {
	var res RestoreResult

	zr, err := openZip(r, size)
	if err != nil {
		return res, fmt.Errorf("%w: %v", core.ErrInvalidArchive, err)
	}

	stage, err := os.MkdirTemp(m.tempDir, "tally-restore-*")
	if err != nil {
		return res, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(stage)

	var (
		meta   *Metadata
		notes  []core.Note
		staged []stagedAsset
	)
	for i, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		switch {
		case f.Name == MetadataEntry:
			var md Metadata
			if err := readJSON(f, &md); err != nil {
				return res, fmt.Errorf("%w: %v", core.ErrInvalidArchive, err)
			}
			meta = &md
		case f.Name == NotesEntry:
			var list []core.Note
			if err := readJSON(f, &list); err != nil {
				return res, fmt.Errorf("%w: %v", core.ErrInvalidArchive, err)
			}
			if list == nil {
				list = []core.Note{}
			}
			notes = list
		case strings.HasPrefix(f.Name, ImagesPrefix):
			if f.FileInfo().IsDir() {
				continue
			}
			name := strings.TrimPrefix(f.Name, ImagesPrefix)
			if !plainName(name) {
				m.logger.Warn("skipping asset entry", "entry", f.Name)
				res.SkippedImages++
				continue
			}
			file := filepath.Join(stage, fmt.Sprintf("%06d", i))
			if err := extract(f, file); err != nil {
				m.logger.Warn("skipping asset entry", "entry", f.Name, "error", err)
				res.SkippedImages++
				continue
			}
			staged = append(staged, stagedAsset{name: name, file: file})
		}
	}

	if meta == nil || notes == nil {
		return res, fmt.Errorf("%w: missing %s or %s", core.ErrInvalidArchive, MetadataEntry, NotesEntry)
	}

	if replace {
		if err := m.clear(ctx); err != nil {
			return res, err
		}
	}

	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if n.ID == "" {
			res.SkippedNotes++
			continue
		}
		if !replace {
			_, err := m.notes.Get(ctx, n.ID)
			if err == nil {
				res.SkippedNotes++
				continue
			}
			if !errors.Is(err, core.ErrNotFound) {
				m.logger.Warn("skipping note", "id", n.ID, "error", err)
				res.SkippedNotes++
				continue
			}
		}
		if err := m.notes.Insert(ctx, n); err != nil {
			m.logger.Warn("skipping note", "id", n.ID, "error", err)
			res.SkippedNotes++
			continue
		}
		res.NoteCount++
	}

	for _, a := range staged {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		data, err := os.ReadFile(a.file)
		if err == nil {
			err = m.assets.WriteAsset(ctx, a.name, data)
		}
		if err != nil {
			m.logger.Warn("skipping asset", "name", a.name, "error", err)
			res.SkippedImages++
			continue
		}
		res.ImageCount++
	}

	res.Success = true
	res.Message = fmt.Sprintf("restore complete: %d notes and %d images", res.NoteCount, res.ImageCount)
	return res, nil
}

// clear removes every note and asset.
func (m *Manager) clear(ctx context.Context) error {
	if err := m.notes.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	names, err := m.assets.ListAssets(ctx)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}
	for _, name := range names {
		if err := m.assets.DeleteAsset(ctx, name); err != nil {
			m.logger.Warn("could not delete asset", "name", name, "error", err)
		}
	}
	return nil
}

func plainName(name string) bool {
	return name != "" && name != "." && name != ".." && path.Base(name) == name && !strings.Contains(name, `\`)
}

func extract(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
