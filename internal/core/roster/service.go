package roster

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Store は合成済み名簿の読み書きを抽象化します。LayeredStore が実装します。
type Store interface {
	Read(ctx context.Context) (*Roster, error)
	Write(ctx context.Context, roster *Roster) error
	LockForWrite(ctx context.Context) error
}

// UseCase は名簿ユースケースの公開インターフェースです。
type UseCase interface {
	ListActive(ctx context.Context) ([]Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	GetWithDirectReports(ctx context.Context, in GetRecordInput) (*RecordWithReports, error)
	ListByHireDateRange(ctx context.Context, in HireDateRangeInput) ([]Record, error)
	Create(ctx context.Context, in CreateRecordInput) (*Record, error)
	Deactivate(ctx context.Context, in DeactivateRecordInput) (*Record, error)
	Reactivate(ctx context.Context, in ReactivateRecordInput) (*Record, error)
	Delete(ctx context.Context, in DeleteRecordInput) error
}

// Service は名簿に関するユースケースをまとめます。
// 書き込みは単一の書き手に直列化され、読み出し・変更・書き戻しの間に他の変更は割り込みません。
type Service struct {
	store  Store
	clock  Clock
	tx     TransactionManager
	logger *zap.Logger

	mu sync.RWMutex
}

// ServiceOption は Service の挙動を変更します。
type ServiceOption func(*Service)

// WithLogger はロガーを指定します。
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService は Service を生成します。clock と tx は nil の場合に既定値を使います。
func NewService(store Store, clock Clock, tx TransactionManager, opts ...ServiceOption) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{store: store, clock: clock, tx: tx, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRecordInput はレコード取得時の入力です。
type GetRecordInput struct {
	ID int64
}

// HireDateRangeInput は入社日による検索の入力です。両端を含みます。
type HireDateRangeInput struct {
	Start *time.Time
	End   *time.Time
}

// CreateRecordInput はレコード作成時の入力です。
type CreateRecordInput struct {
	ID            *int64
	Name          string
	Position      string
	HireDate      *time.Time
	DirectReports []int64
	ManagerID     *int64
}

// DeactivateRecordInput は無効化時の入力です。
type DeactivateRecordInput struct {
	ID int64
}

// ReactivateRecordInput は再有効化時の入力です。
type ReactivateRecordInput struct {
	ID int64
}

// DeleteRecordInput は削除時の入力です。
type DeleteRecordInput struct {
	ID int64
}

// ListActive はアクティブなレコードを姓の昇順で返します。
func (s *Service) ListActive(ctx context.Context) ([]Record, error) {
	roster, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]Record, 0, roster.Len())
	for _, rec := range roster.Records() {
		if rec.Active {
			active = append(active, rec)
		}
	}
	sortByLastName(active)
	return active, nil
}

// ListAll はすべてのレコードを姓の昇順で返します。
func (s *Service) ListAll(ctx context.Context) ([]Record, error) {
	roster, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	records := roster.Records()
	sortByLastName(records)
	return records, nil
}

// GetWithDirectReports はレコードと、名簿に現存する直属の部下を返します。
// 存在しない部下への参照はその場で取り除かれ、部下を持つレコードの場合は名簿が書き戻されます。
func (s *Service) GetWithDirectReports(ctx context.Context, in GetRecordInput) (*RecordWithReports, error) {
	var result *RecordWithReports
	err := s.update(ctx, func(h *Hierarchy) (bool, error) {
		rec, reports, changed, err := h.RepairReports(in.ID)
		if err != nil {
			return false, fmt.Errorf("id %d: %w", in.ID, err)
		}
		if changed {
			s.logger.Info("removed stale direct reports", zap.Int64("id", rec.ID), zap.Int("remaining", len(rec.DirectReports)))
		}
		result = &RecordWithReports{Record: rec, DirectReports: reports}
		return len(rec.DirectReports) > 0 || changed, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListByHireDateRange は入社日が [Start, End] に含まれるレコードを入社日の降順で返します。
// 入社日を持たないレコードは含みません。
func (s *Service) ListByHireDateRange(ctx context.Context, in HireDateRangeInput) ([]Record, error) {
	if in.Start == nil || in.End == nil {
		return nil, fmt.Errorf("start and end are required: %w", ErrInvalidDateRange)
	}

	start := normalizeDate(in.Start)
	end := normalizeDate(in.End)
	today := s.today()

	if start.After(today) || end.After(today) {
		return nil, fmt.Errorf("dates must not be in the future: %w", ErrInvalidDateRange)
	}
	if start.After(*end) {
		return nil, fmt.Errorf("start must not be after end: %w", ErrInvalidDateRange)
	}

	roster, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Record, 0)
	for _, rec := range roster.Records() {
		if rec.HireDate == nil {
			s.logger.Debug("skipping record without hire date", zap.Int64("id", rec.ID))
			continue
		}
		hired := normalizeDate(rec.HireDate)
		if hired.Before(*start) || hired.After(*end) {
			continue
		}
		matched = append(matched, rec)
	}

	slices.SortStableFunc(matched, func(a, b Record) int {
		return b.HireDate.Compare(*a.HireDate)
	})

	s.logger.Debug("hire date range resolved",
		zap.Time("start", *start),
		zap.Time("end", *end),
		zap.Int("matched", len(matched)),
	)
	return matched, nil
}

// Create は新しいレコードを作成します。ManagerID が指定されていれば上司の DirectReports に追加します。
func (s *Service) Create(ctx context.Context, in CreateRecordInput) (*Record, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, ErrInvalidName
	}
	if strings.TrimSpace(in.Position) == "" {
		return nil, ErrInvalidPosition
	}
	if in.HireDate == nil {
		return nil, fmt.Errorf("required: %w", ErrInvalidHireDate)
	}
	hireDate := normalizeDate(in.HireDate)
	if hireDate.After(s.today()) {
		return nil, fmt.Errorf("must not be in the future: %w", ErrInvalidHireDate)
	}
	if in.ID == nil {
		return nil, ErrInvalidID
	}
	id := *in.ID

	var created Record
	err := s.update(ctx, func(h *Hierarchy) (bool, error) {
		roster := h.Roster()
		if roster.Contains(id) {
			return false, fmt.Errorf("id %d: %w", id, ErrDuplicateID)
		}
		for _, reportID := range in.DirectReports {
			if !roster.Contains(reportID) {
				return false, fmt.Errorf("id %d: %w", reportID, ErrUnknownDirectReport)
			}
		}
		if in.ManagerID != nil {
			if err := h.AttachToManager(id, *in.ManagerID); err != nil {
				return false, fmt.Errorf("manager id %d: %w", *in.ManagerID, err)
			}
		}

		created = Record{
			ID:            id,
			Name:          in.Name,
			Position:      in.Position,
			Active:        true,
			HireDate:      hireDate,
			DirectReports: cloneIDs(in.DirectReports),
			IsBase:        false,
		}
		h.Add(created)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("record created", zap.Int64("id", created.ID))
	return &created, nil
}

// Deactivate はレコードを非アクティブにし、上司との関係と自身の直属の部下を解除します。
func (s *Service) Deactivate(ctx context.Context, in DeactivateRecordInput) (*Record, error) {
	var updated Record
	err := s.update(ctx, func(h *Hierarchy) (bool, error) {
		rec, ok := h.Roster().Get(in.ID)
		if !ok {
			return false, fmt.Errorf("id %d: %w", in.ID, ErrRecordNotFound)
		}
		if !rec.Active {
			return false, fmt.Errorf("id %d: %w", in.ID, ErrAlreadyInactive)
		}
		deactivated, err := h.Deactivate(in.ID)
		if err != nil {
			return false, err
		}
		updated = deactivated
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("record deactivated", zap.Int64("id", updated.ID))
	return &updated, nil
}

// Reactivate はレコードを再びアクティブにします。直属の部下は復元しません。
func (s *Service) Reactivate(ctx context.Context, in ReactivateRecordInput) (*Record, error) {
	var updated Record
	err := s.update(ctx, func(h *Hierarchy) (bool, error) {
		rec, ok := h.Roster().Get(in.ID)
		if !ok {
			return false, fmt.Errorf("id %d: %w", in.ID, ErrRecordNotFound)
		}
		if rec.Active {
			return false, fmt.Errorf("id %d: %w", in.ID, ErrAlreadyActive)
		}
		rec.Active = true
		h.Roster().Put(rec)
		updated = rec
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("record reactivated", zap.Int64("id", updated.ID))
	return &updated, nil
}

// Delete は新規レコードを名簿から完全に取り除きます。基底レコードは削除できません。
func (s *Service) Delete(ctx context.Context, in DeleteRecordInput) error {
	err := s.update(ctx, func(h *Hierarchy) (bool, error) {
		rec, ok := h.Roster().Get(in.ID)
		if !ok {
			return false, fmt.Errorf("id %d: %w", in.ID, ErrRecordNotFound)
		}
		if rec.IsBase {
			return false, fmt.Errorf("id %d: %w", in.ID, ErrCannotDeleteBaseRecord)
		}
		if err := h.Remove(in.ID); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("record deleted", zap.Int64("id", in.ID))
	return nil
}

func (s *Service) snapshot(ctx context.Context) (*Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roster *Roster
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		read, err := s.store.Read(txCtx)
		if err != nil {
			return err
		}
		roster = read
		return nil
	}); err != nil {
		return nil, err
	}
	return roster, nil
}

// update は読み出し・変更・書き戻しを 1 つの書き込み単位として実行します。
// fn が false を返した場合は書き戻しを行いません。
func (s *Service) update(ctx context.Context, fn func(h *Hierarchy) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.store.LockForWrite(txCtx); err != nil {
			return err
		}

		roster, err := s.store.Read(txCtx)
		if err != nil {
			return err
		}

		h := NewHierarchy(roster)
		persist, err := fn(h)
		if err != nil {
			return err
		}
		if !persist {
			return nil
		}
		return s.store.Write(txCtx, h.Roster())
	})
}

func (s *Service) today() time.Time {
	now := s.clock.Now()
	return *normalizeDate(&now)
}

func sortByLastName(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return strings.Compare(a.LastName(), b.LastName())
	})
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}
