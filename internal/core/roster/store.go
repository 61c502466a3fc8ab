package roster

import (
	"context"
	"fmt"

	"github.com/wI2L/jsondiff"
	"go.uber.org/zap"
)

// MergePolicy は基底レコードに対するオーバーレイの反映範囲を表します。
type MergePolicy string

const (
	// MergeActiveOnly はオーバーレイの active のみを基底レコードに反映します。
	MergeActiveOnly MergePolicy = "active_only"
	// MergeFullSnapshot はオーバーレイに保存された全項目を基底レコードに反映します。
	MergeFullSnapshot MergePolicy = "full_snapshot"
)

// ParseMergePolicy は設定値から MergePolicy を解釈します。空文字は MergeActiveOnly です。
func ParseMergePolicy(raw string) (MergePolicy, error) {
	switch MergePolicy(raw) {
	case "", MergeActiveOnly:
		return MergeActiveOnly, nil
	case MergeFullSnapshot:
		return MergeFullSnapshot, nil
	default:
		return "", fmt.Errorf("roster: unknown merge policy %q", raw)
	}
}

func (p MergePolicy) apply(base Record, entry OverlayEntry) Record {
	merged := base
	merged.Active = entry.Active
	if p == MergeFullSnapshot {
		merged.Name = entry.Name
		merged.Position = entry.Position
		merged.HireDate = cloneTime(entry.HireDate)
		merged.DirectReports = cloneIDs(entry.DirectReports)
	}
	return merged
}

// LayeredStore は基底データセットとオーバーレイを合成して名簿を提供します。
type LayeredStore struct {
	base    BaseSource
	overlay OverlaySource
	policy  MergePolicy
	logger  *zap.Logger
}

// StoreOption は LayeredStore の挙動を変更します。
type StoreOption func(*LayeredStore)

// WithMergePolicy は読み出し時のマージ方針を指定します。
func WithMergePolicy(policy MergePolicy) StoreOption {
	return func(s *LayeredStore) {
		s.policy = policy
	}
}

// WithStoreLogger はロガーを指定します。
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *LayeredStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLayeredStore は LayeredStore を生成します。
func NewLayeredStore(base BaseSource, overlay OverlaySource, opts ...StoreOption) *LayeredStore {
	s := &LayeredStore{
		base:    base,
		overlay: overlay,
		policy:  MergeActiveOnly,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read は基底データセットとオーバーレイを合成した名簿を返します。
// 基底レコードは常に含まれ、新規レコードはオーバーレイに存在するものだけが含まれます。
func (s *LayeredStore) Read(ctx context.Context) (*Roster, error) {
	roster, err := s.read(ctx)
	recordStoreOperation("read", err)
	return roster, err
}

func (s *LayeredStore) read(ctx context.Context) (*Roster, error) {
	base, err := s.base.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load base: %w", ErrStoreIO, err)
	}

	overlay, err := s.overlay.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load overlay: %w", ErrStoreIO, err)
	}

	merged := NewRoster()
	for _, rec := range base {
		rec = rec.Clone()
		rec.IsBase = true
		merged.Put(rec)
	}

	inOverlay := make(map[int64]struct{}, len(overlay))
	for _, entry := range overlay {
		inOverlay[entry.ID] = struct{}{}
		if existing, ok := merged.Get(entry.ID); ok && existing.IsBase {
			merged.Put(s.policy.apply(existing, entry))
			continue
		}
		merged.Put(entry.toRecord())
	}

	visible := NewRoster()
	for _, rec := range merged.Records() {
		if rec.IsBase {
			visible.Put(rec)
			continue
		}
		if _, ok := inOverlay[rec.ID]; ok {
			visible.Put(rec)
		}
	}

	return visible, nil
}

// Write は roster を望ましい全体像として受け取り、オーバーレイとの差分を反映します。
// roster に存在しない ID のエントリは削除され、オーバーレイは全件置き換えで保存されます。
func (s *LayeredStore) Write(ctx context.Context, roster *Roster) error {
	err := s.write(ctx, roster)
	recordStoreOperation("write", err)
	return err
}

func (s *LayeredStore) write(ctx context.Context, roster *Roster) error {
	base, err := s.base.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load base: %w", ErrStoreIO, err)
	}
	baseIDs := make(map[int64]struct{}, len(base))
	for _, rec := range base {
		baseIDs[rec.ID] = struct{}{}
	}

	existing, err := s.overlay.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load overlay: %w", ErrStoreIO, err)
	}
	entries := newOverlayIndex(existing)

	pruned := entries.retain(func(id int64) bool { return roster.Contains(id) })

	for _, rec := range roster.Records() {
		if _, ok := baseIDs[rec.ID]; ok {
			entry, found := entries.get(rec.ID)
			if !found {
				entry = OverlayEntry{ID: rec.ID}
			}
			entry.Active = rec.Active
			entry.DirectReports = cloneIDs(rec.DirectReports)
			entry.Name = rec.Name
			entry.Position = rec.Position
			entry.HireDate = cloneTime(rec.HireDate)
			entries.put(entry)
			continue
		}
		if !rec.IsBase {
			entries.put(entryFromRecord(rec))
		}
	}

	next := entries.values()
	s.logDelta(existing, next, pruned)

	if err := s.overlay.Save(ctx, next); err != nil {
		return fmt.Errorf("%w: save overlay: %w", ErrStoreIO, err)
	}
	if pruned > 0 {
		overlayPruned.Add(float64(pruned))
	}
	return nil
}

// LockForWrite はオーバーレイが対応していればプロセス間の書き込みロックを取得します。
func (s *LayeredStore) LockForWrite(ctx context.Context) error {
	locker, ok := s.overlay.(WriteLocker)
	if !ok {
		return nil
	}
	if err := locker.AcquireWriteLock(ctx); err != nil {
		return fmt.Errorf("%w: acquire write lock: %w", ErrStoreIO, err)
	}
	return nil
}

func (s *LayeredStore) logDelta(before, after []OverlayEntry, pruned int) {
	if !s.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	patch, err := jsondiff.Compare(before, after)
	if err != nil {
		s.logger.Debug("overlay diff unavailable", zap.Error(err))
		return
	}
	s.logger.Debug("writing overlay",
		zap.Int("entries", len(after)),
		zap.Int("pruned", pruned),
		zap.Int("patch_ops", len(patch)),
	)
}

type overlayIndex struct {
	order   []int64
	entries map[int64]OverlayEntry
}

func newOverlayIndex(entries []OverlayEntry) *overlayIndex {
	idx := &overlayIndex{entries: make(map[int64]OverlayEntry, len(entries))}
	for _, entry := range entries {
		idx.put(entry)
	}
	return idx
}

func (i *overlayIndex) get(id int64) (OverlayEntry, bool) {
	entry, ok := i.entries[id]
	return entry, ok
}

func (i *overlayIndex) put(entry OverlayEntry) {
	if _, ok := i.entries[entry.ID]; !ok {
		i.order = append(i.order, entry.ID)
	}
	i.entries[entry.ID] = entry
}

func (i *overlayIndex) retain(keep func(id int64) bool) int {
	kept := i.order[:0:0]
	removed := 0
	for _, id := range i.order {
		if keep(id) {
			kept = append(kept, id)
			continue
		}
		delete(i.entries, id)
		removed++
	}
	i.order = kept
	return removed
}

func (i *overlayIndex) values() []OverlayEntry {
	out := make([]OverlayEntry, 0, len(i.order))
	for _, id := range i.order {
		out = append(out, i.entries[id])
	}
	return out
}
