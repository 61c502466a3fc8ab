package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
	pgdb "github.com/ogurasousui/roster-grpc-clean-arch/internal/platform/db/postgres"
)

// overlayAdvisoryLockKey はオーバーレイ書き込みを直列化するアドバイザリロックのキーです。
const overlayAdvisoryLockKey int64 = 0x726f73746572

// ErrLockOutsideTransaction はトランザクション外で書き込みロックを要求した場合のエラーです。
var ErrLockOutsideTransaction = errors.New("postgres: write lock requires a transaction")

// readWriteTransactor は読み書きトランザクションの開始を抽象化します。
type readWriteTransactor interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactor struct{}

func (noopTransactor) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// OverlayRepository は PostgreSQL を利用したオーバーレイの永続化実装です。
type OverlayRepository struct {
	pool pgdb.Queryer
	tx   readWriteTransactor
}

// NewOverlayRepository は OverlayRepository を生成します。tx が nil の場合は呼び出し元のトランザクションに従います。
func NewOverlayRepository(pool pgdb.Queryer, tx readWriteTransactor) *OverlayRepository {
	if tx == nil {
		tx = noopTransactor{}
	}
	return &OverlayRepository{pool: pool, tx: tx}
}

// Load はオーバーレイを保存順に取得します。
func (r *OverlayRepository) Load(ctx context.Context) ([]roster.OverlayEntry, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, name, position, active, hire_date, direct_reports
          FROM roster_overlay
         ORDER BY seq, id
    `)
	if err != nil {
		return nil, fmt.Errorf("postgres: load overlay: %w", err)
	}
	defer rows.Close()

	entries := make([]roster.OverlayEntry, 0)
	for rows.Next() {
		entry, err := scanOverlayEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan overlay: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: load overlay: %w", err)
	}
	return entries, nil
}

// Save はオーバーレイ全体を entries で置き換えます。削除と再挿入は 1 トランザクションで行います。
func (r *OverlayRepository) Save(ctx context.Context, entries []roster.OverlayEntry) error {
	return r.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		exec := pgdb.QueryerFromContext(txCtx, r.pool)
		if _, err := exec.Exec(txCtx, `DELETE FROM roster_overlay`); err != nil {
			return fmt.Errorf("postgres: clear overlay: %w", err)
		}

		for seq, entry := range entries {
			reports := entry.DirectReports
			if reports == nil {
				reports = []int64{}
			}
			if _, err := exec.Exec(txCtx, `
        INSERT INTO roster_overlay (id, seq, name, position, active, hire_date, direct_reports)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `,
				entry.ID,
				seq,
				entry.Name,
				entry.Position,
				entry.Active,
				nullableDate(entry.HireDate),
				reports,
			); err != nil {
				return fmt.Errorf("postgres: insert overlay id %d: %w", entry.ID, err)
			}
		}
		return nil
	})
}

// AcquireWriteLock はトランザクション終了まで保持されるアドバイザリロックを取得します。
func (r *OverlayRepository) AcquireWriteLock(ctx context.Context) error {
	if !pgdb.InTransaction(ctx) {
		return ErrLockOutsideTransaction
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, overlayAdvisoryLockKey); err != nil {
		return fmt.Errorf("postgres: advisory lock: %w", err)
	}
	return nil
}

func scanOverlayEntry(row pgx.Row) (roster.OverlayEntry, error) {
	var (
		id       int64
		name     string
		position string
		active   bool
		hireDate sql.NullTime
		reports  []int64
	)

	if err := row.Scan(&id, &name, &position, &active, &hireDate, &reports); err != nil {
		return roster.OverlayEntry{}, err
	}

	var hiredPtr *time.Time
	if hireDate.Valid {
		t := hireDate.Time.UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		hiredPtr = &date
	}
	if reports == nil {
		reports = []int64{}
	}

	return roster.OverlayEntry{
		ID:            id,
		Name:          name,
		Position:      position,
		Active:        active,
		HireDate:      hiredPtr,
		DirectReports: reports,
	}, nil
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
