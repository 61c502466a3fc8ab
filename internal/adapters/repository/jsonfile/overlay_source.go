package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
	"github.com/spf13/afero"
)

// OverlaySource は JSON ファイルにオーバーレイを保存します。
// Save は同じディレクトリの一時ファイルに書き出してから rename するため、読み手が書きかけの内容を見ることはありません。
type OverlaySource struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewOverlaySource は OverlaySource を生成します。
func NewOverlaySource(fs afero.Fs, path string) *OverlaySource {
	return &OverlaySource{fs: fs, path: path}
}

// EnsureFile はディレクトリと空のオーバーレイファイルが無ければ作成します。
func (s *OverlaySource) EnsureFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("jsonfile: create overlay dir: %w", err)
	}

	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("jsonfile: stat overlay %s: %w", s.path, err)
	}
	if exists {
		return nil
	}
	return s.writeLocked([]document{})
}

// Load はオーバーレイを読み出します。ファイルが無いか空の場合は空の一覧を返します。
func (s *OverlaySource) Load(ctx context.Context) ([]roster.OverlayEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []roster.OverlayEntry{}, nil
		}
		return nil, fmt.Errorf("jsonfile: read overlay %s: %w", s.path, err)
	}

	docs, err := decodeDocuments(b)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: parse overlay %s: %w", s.path, err)
	}

	entries := make([]roster.OverlayEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, doc.toEntry())
	}
	return entries, nil
}

// Save はオーバーレイ全体を entries で置き換えます。
func (s *OverlaySource) Save(ctx context.Context, entries []roster.OverlayEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	docs := make([]document, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, documentFromEntry(entry))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(docs)
}

func (s *OverlaySource) writeLocked(docs []document) error {
	b, err := encodeDocuments(docs)
	if err != nil {
		return fmt.Errorf("jsonfile: encode overlay: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := afero.TempFile(s.fs, dir, ".overlay-*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("jsonfile: write overlay: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("jsonfile: sync overlay: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("jsonfile: close overlay: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("jsonfile: replace overlay %s: %w", s.path, err)
	}
	return nil
}
