package memory

import (
	"context"
	"sync"

	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
)

// OverlaySource はプロセス内メモリにオーバーレイを保持します。
// 永続化を伴わない開発環境やテストで利用します。
type OverlaySource struct {
	mu      sync.RWMutex
	entries []roster.OverlayEntry
}

// NewOverlaySource は初期エントリを持つ OverlaySource を生成します。
func NewOverlaySource(initial ...roster.OverlayEntry) *OverlaySource {
	return &OverlaySource{entries: cloneEntries(initial)}
}

// Load は保持しているエントリのコピーを返します。
func (s *OverlaySource) Load(ctx context.Context) ([]roster.OverlayEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries), nil
}

// Save は保持しているエントリを entries で置き換えます。
func (s *OverlaySource) Save(ctx context.Context, entries []roster.OverlayEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = cloneEntries(entries)
	return nil
}

func cloneEntries(entries []roster.OverlayEntry) []roster.OverlayEntry {
	out := make([]roster.OverlayEntry, 0, len(entries))
	for _, entry := range entries {
		dup := entry
		if entry.HireDate != nil {
			hired := *entry.HireDate
			dup.HireDate = &hired
		}
		dup.DirectReports = append([]int64{}, entry.DirectReports...)
		out = append(out, dup)
	}
	return out
}
