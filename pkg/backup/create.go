package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/core"
)

// Create writes an archive of every note and asset to w. The archive is
// assembled in a spool file first; w receives nothing unless it is complete.
func (m *Manager) Create(ctx context.Context, w io.Writer) Result {
	return m.deliver(ctx, "", func(spool io.Reader) error {
		if _, err := io.Copy(w, spool); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		return nil
	})
}

// CreateFile writes an archive to path. The file appears atomically.
func (m *Manager) CreateFile(ctx context.Context, path string) Result {
	return m.deliver(ctx, path, func(spool io.Reader) error {
		if _, err := fs.CopyFileAtomic(path, spool, 0644); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		return nil
	})
}

func (m *Manager) deliver(ctx context.Context, path string, sink func(io.Reader) error) Result {
	if !m.acquire() {
		return Result{Message: "backup failed: " + core.ErrBusy.Error(), Err: core.ErrBusy}
	}
	defer m.release()

	spool, meta, err := m.spool(ctx)
	if err == nil {
		defer discard(spool)
		err = sink(spool)
	}
	if err != nil {
		m.logger.Error("backup failed", "path", path, "error", err)
		return Result{Message: "backup failed: " + err.Error(), Err: err}
	}

	m.logger.Info("backup created", "path", path, "notes", meta.NoteCount, "images", meta.ImageCount)
	return Result{
		Success:    true,
		Message:    fmt.Sprintf("backup complete: %d notes and %d images", meta.NoteCount, meta.ImageCount),
		Path:       path,
		NoteCount:  meta.NoteCount,
		ImageCount: meta.ImageCount,
	}
}

// spool writes a complete archive to a temp file and rewinds it.
func (m *Manager) spool(ctx context.Context) (*os.File, Metadata, error) {
	notes, err := m.notes.List(ctx)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("list notes: %w", err)
	}
	names, err := m.assets.ListAssets(ctx)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("list assets: %w", err)
	}

	meta := Metadata{
		Version:    FormatVersion,
		Timestamp:  m.now().UnixMilli(),
		NoteCount:  len(notes),
		ImageCount: len(names),
		AppVersion: m.appVersion,
	}

	f, err := os.CreateTemp(m.tempDir, "tally-backup-*.zip")
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("create spool: %w", err)
	}
	if err := m.writeArchive(ctx, f, meta, notes, names); err != nil {
		discard(f)
		return nil, Metadata{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		discard(f)
		return nil, Metadata{}, fmt.Errorf("rewind spool: %w", err)
	}
	return f, meta, nil
}

func discard(f *os.File) {
	f.Close()
	os.Remove(f.Name())
}

func (m *Manager) writeArchive(ctx context.Context, out io.Writer, meta Metadata, notes []core.Note, names []string) error {
	zw := zip.NewWriter(out)

	if err := writeJSONEntry(zw, MetadataEntry, meta); err != nil {
		return err
	}
	if notes == nil {
		notes = []core.Note{}
	}
	if err := writeJSONEntry(zw, NotesEntry, notes); err != nil {
		return err
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := m.assets.ReadAsset(ctx, name)
		if err != nil {
			return fmt.Errorf("read asset %s: %w", name, err)
		}
		fw, err := zw.Create(ImagesPrefix + name)
		if err != nil {
			return fmt.Errorf("add asset %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("add asset %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

func writeJSONEntry(zw *zip.Writer, name string, v any) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	enc := json.NewEncoder(fw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

// ValidateFile is Validate over a file on disk.
func ValidateFile(path string) *Metadata {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil
	}
	return Validate(f, info.Size())
}
