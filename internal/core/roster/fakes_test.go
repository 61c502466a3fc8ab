package roster

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeBaseSource struct {
	records []Record
	err     error
}

func (f *fakeBaseSource) Load(context.Context) ([]Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Record, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec.Clone())
	}
	return out, nil
}

type fakeOverlaySource struct {
	mu      sync.Mutex
	entries []OverlayEntry
	loadErr error
	saveErr error
	saves   int
	locks   int
}

func (f *fakeOverlaySource) Load(context.Context) ([]OverlayEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]OverlayEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, cloneEntry(entry))
	}
	return out, nil
}

func (f *fakeOverlaySource) Save(_ context.Context, entries []OverlayEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.entries = make([]OverlayEntry, 0, len(entries))
	for _, entry := range entries {
		f.entries = append(f.entries, cloneEntry(entry))
	}
	return nil
}

func (f *fakeOverlaySource) snapshot() []OverlayEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]OverlayEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

func (f *fakeOverlaySource) find(id int64) (OverlayEntry, bool) {
	for _, entry := range f.snapshot() {
		if entry.ID == id {
			return entry, true
		}
	}
	return OverlayEntry{}, false
}

type lockingOverlaySource struct {
	fakeOverlaySource
	lockErr error
}

func (l *lockingOverlaySource) AcquireWriteLock(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locks++
	return l.lockErr
}

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

var errDisk = errors.New("disk unavailable")

func cloneEntry(e OverlayEntry) OverlayEntry {
	e.HireDate = cloneTime(e.HireDate)
	e.DirectReports = cloneIDs(e.DirectReports)
	return e
}

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func int64Ptr(v int64) *int64 {
	return &v
}

// baseRecords は 3 人の基底レコードを返します。1 が 2 と 3 の上司です。
func baseRecords() []Record {
	return []Record{
		{ID: 1, Name: "Ada Lovelace", Position: "CEO", Active: true, HireDate: date(2020, 1, 15), DirectReports: []int64{2, 3}},
		{ID: 2, Name: "Grace Hopper", Position: "CTO", Active: true, HireDate: date(2021, 3, 1), DirectReports: []int64{}},
		{ID: 3, Name: "Alan Turing", Position: "Engineer", Active: true, HireDate: date(2022, 7, 20), DirectReports: []int64{}},
	}
}
