package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type serviceFixture struct {
	svc     *Service
	overlay *fakeOverlaySource
	base    *fakeBaseSource
	clock   *stubClock
}

func newServiceFixture(t *testing.T, records ...Record) *serviceFixture {
	t.Helper()

	if len(records) == 0 {
		records = baseRecords()
	}
	base := &fakeBaseSource{records: records}
	overlay := &fakeOverlaySource{}
	clock := &stubClock{now: time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)}
	store := NewLayeredStore(base, overlay)
	return &serviceFixture{
		svc:     NewService(store, clock, nil),
		overlay: overlay,
		base:    base,
		clock:   clock,
	}
}

func idsOf(records []Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}

func TestService_ListAll_SortsByLastName(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)

	records, err := f.svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	// Hopper, Lovelace, Turing
	if diff := cmp.Diff([]int64{2, 1, 3}, idsOf(records)); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestService_ListActive_FiltersInactive(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Deactivate(ctx, DeactivateRecordInput{ID: 2}); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	records, err := f.svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive returned error: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 3}, idsOf(records)); diff != "" {
		t.Fatalf("unexpected active records (-want +got):\n%s", diff)
	}
}

func TestService_Create_RoundTrip(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	hired := time.Date(2023, 9, 4, 18, 45, 0, 0, time.UTC)
	created, err := f.svc.Create(ctx, CreateRecordInput{
		ID:            int64Ptr(10),
		Name:          " Barbara Liskov ",
		Position:      " Researcher",
		HireDate:      &hired,
		DirectReports: []int64{3},
		ManagerID:     int64Ptr(2),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !created.Active || created.IsBase {
		t.Fatalf("unexpected flags on created record: %+v", created)
	}

	got, err := f.svc.GetWithDirectReports(ctx, GetRecordInput{ID: 10})
	if err != nil {
		t.Fatalf("GetWithDirectReports returned error: %v", err)
	}
	want := Record{
		ID:            10,
		Name:          " Barbara Liskov ",
		Position:      " Researcher",
		Active:        true,
		HireDate:      date(2023, 9, 4),
		DirectReports: []int64{3},
	}
	if diff := cmp.Diff(want, got.Record); diff != "" {
		t.Fatalf("unexpected record after round trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3}, idsOf(got.DirectReports)); diff != "" {
		t.Fatalf("unexpected resolved reports (-want +got):\n%s", diff)
	}

	stored, ok := f.overlay.find(10)
	if !ok || stored.Name != " Barbara Liskov " || stored.Position != " Researcher" {
		t.Fatalf("expected overlay entry with submitted fields, got %+v", stored)
	}

	all, err := f.svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	for _, rec := range all {
		if rec.ID == 10 && (rec.Name != " Barbara Liskov " || rec.Position != " Researcher") {
			t.Fatalf("listed record changed submitted fields: name=%q position=%q", rec.Name, rec.Position)
		}
	}
}

func TestService_Create_AttachesToNewManager(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateRecordInput{
		ID: int64Ptr(10), Name: "Barbara Liskov", Position: "Lead", HireDate: date(2023, 1, 1),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateRecordInput{
		ID: int64Ptr(11), Name: "John McCarthy", Position: "Engineer", HireDate: date(2023, 2, 1), ManagerID: int64Ptr(10),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := f.svc.GetWithDirectReports(ctx, GetRecordInput{ID: 10})
	if err != nil {
		t.Fatalf("GetWithDirectReports returned error: %v", err)
	}
	if diff := cmp.Diff([]int64{11}, got.Record.DirectReports); diff != "" {
		t.Fatalf("unexpected direct reports (-want +got):\n%s", diff)
	}
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()

	future := date(2024, 1, 11)
	today := time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   CreateRecordInput
		want error
	}{
		{name: "blank name", in: CreateRecordInput{ID: int64Ptr(10), Name: "  ", Position: "Eng", HireDate: date(2023, 1, 1)}, want: ErrInvalidName},
		{name: "blank position", in: CreateRecordInput{ID: int64Ptr(10), Name: "A B", Position: "", HireDate: date(2023, 1, 1)}, want: ErrInvalidPosition},
		{name: "missing hire date", in: CreateRecordInput{ID: int64Ptr(10), Name: "A B", Position: "Eng"}, want: ErrInvalidHireDate},
		{name: "future hire date", in: CreateRecordInput{ID: int64Ptr(10), Name: "A B", Position: "Eng", HireDate: future}, want: ErrInvalidHireDate},
		{name: "missing id", in: CreateRecordInput{Name: "A B", Position: "Eng", HireDate: date(2023, 1, 1)}, want: ErrInvalidID},
		{name: "duplicate id", in: CreateRecordInput{ID: int64Ptr(2), Name: "A B", Position: "Eng", HireDate: date(2023, 1, 1)}, want: ErrDuplicateID},
		{name: "unknown report", in: CreateRecordInput{ID: int64Ptr(10), Name: "A B", Position: "Eng", HireDate: date(2023, 1, 1), DirectReports: []int64{404}}, want: ErrUnknownDirectReport},
		{name: "unknown manager", in: CreateRecordInput{ID: int64Ptr(10), Name: "A B", Position: "Eng", HireDate: date(2023, 1, 1), ManagerID: int64Ptr(404)}, want: ErrManagerNotFound},
		{name: "today is allowed", in: CreateRecordInput{ID: int64Ptr(10), Name: "A B", Position: "Eng", HireDate: &today}, want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			_, err := f.svc.Create(context.Background(), tt.in)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if f.overlay.saves != 0 {
				t.Fatalf("validation failure must not write, got %d saves", f.overlay.saves)
			}
		})
	}
}

func TestService_Create_DuplicateIDIsInvalidInput(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	_, err := f.svc.Create(context.Background(), CreateRecordInput{
		ID: int64Ptr(1), Name: "Ada Clone", Position: "CEO", HireDate: date(2023, 1, 1),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_InactiveManager(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Deactivate(ctx, DeactivateRecordInput{ID: 2}); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	_, err := f.svc.Create(ctx, CreateRecordInput{
		ID: int64Ptr(10), Name: "A B", Position: "Eng", HireDate: date(2023, 1, 1), ManagerID: int64Ptr(2),
	})
	if !errors.Is(err, ErrInactiveManager) {
		t.Fatalf("expected ErrInactiveManager, got %v", err)
	}
}

func TestService_Deactivate_ClearsReports(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateRecordInput{
		ID: int64Ptr(10), Name: "Barbara Liskov", Position: "Lead", HireDate: date(2023, 1, 1),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	for _, id := range []int64{11, 12} {
		if _, err := f.svc.Create(ctx, CreateRecordInput{
			ID: int64Ptr(id), Name: "Report Person", Position: "Eng", HireDate: date(2023, 2, 1), ManagerID: int64Ptr(10),
		}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	deactivated, err := f.svc.Deactivate(ctx, DeactivateRecordInput{ID: 10})
	if err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if deactivated.Active || len(deactivated.DirectReports) != 0 {
		t.Fatalf("expected inactive record without reports, got %+v", deactivated)
	}

	if _, err := f.svc.Deactivate(ctx, DeactivateRecordInput{ID: 10}); !errors.Is(err, ErrAlreadyInactive) {
		t.Fatalf("expected ErrAlreadyInactive, got %v", err)
	}
	if _, err := f.svc.Deactivate(ctx, DeactivateRecordInput{ID: 404}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Deactivate_RemovesFromManager(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateRecordInput{
		ID: int64Ptr(10), Name: "Barbara Liskov", Position: "Lead", HireDate: date(2023, 1, 1),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateRecordInput{
		ID: int64Ptr(11), Name: "John McCarthy", Position: "Eng", HireDate: date(2023, 1, 1), ManagerID: int64Ptr(10),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := f.svc.Deactivate(ctx, DeactivateRecordInput{ID: 11}); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	got, err := f.svc.GetWithDirectReports(ctx, GetRecordInput{ID: 10})
	if err != nil {
		t.Fatalf("GetWithDirectReports returned error: %v", err)
	}
	if len(got.Record.DirectReports) != 0 {
		t.Fatalf("expected manager without reports, got %v", got.Record.DirectReports)
	}
}

func TestService_Reactivate(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Reactivate(ctx, ReactivateRecordInput{ID: 1}); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}
	if _, err := f.svc.Reactivate(ctx, ReactivateRecordInput{ID: 404}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := f.svc.Deactivate(ctx, DeactivateRecordInput{ID: 3}); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	rec, err := f.svc.Reactivate(ctx, ReactivateRecordInput{ID: 3})
	if err != nil {
		t.Fatalf("Reactivate returned error: %v", err)
	}
	if !rec.Active {
		t.Fatal("expected active record")
	}
}

func TestService_BaseRecordsSurviveStatusChanges(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		for _, id := range []int64{1, 2, 3} {
			if _, err := f.svc.Deactivate(ctx, DeactivateRecordInput{ID: id}); err != nil {
				t.Fatalf("Deactivate(%d) returned error: %v", id, err)
			}
		}
		for _, id := range []int64{3, 1} {
			if _, err := f.svc.Reactivate(ctx, ReactivateRecordInput{ID: id}); err != nil {
				t.Fatalf("Reactivate(%d) returned error: %v", id, err)
			}
		}
		if _, err := f.svc.Reactivate(ctx, ReactivateRecordInput{ID: 2}); err != nil {
			t.Fatalf("Reactivate(2) returned error: %v", err)
		}

		records, err := f.svc.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll returned error: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected all base records to remain, got %v", idsOf(records))
		}
	}

	for _, id := range []int64{1, 2, 3} {
		if err := f.svc.Delete(ctx, DeleteRecordInput{ID: id}); !errors.Is(err, ErrCannotDeleteBaseRecord) {
			t.Fatalf("expected ErrCannotDeleteBaseRecord for %d, got %v", id, err)
		}
	}
}

func TestService_Delete_NewRecord(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, CreateRecordInput{
		ID: int64Ptr(10), Name: "Barbara Liskov", Position: "Lead", HireDate: date(2023, 1, 1),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateRecordInput{
		ID: int64Ptr(11), Name: "John McCarthy", Position: "Eng", HireDate: date(2023, 1, 1), ManagerID: int64Ptr(10),
	}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := f.svc.Delete(ctx, DeleteRecordInput{ID: 11}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := f.overlay.find(11); ok {
		t.Fatal("deleted record must be pruned from the overlay")
	}
	if _, err := f.svc.GetWithDirectReports(ctx, GetRecordInput{ID: 11}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	manager, err := f.svc.GetWithDirectReports(ctx, GetRecordInput{ID: 10})
	if err != nil {
		t.Fatalf("GetWithDirectReports returned error: %v", err)
	}
	if len(manager.Record.DirectReports) != 0 {
		t.Fatalf("expected manager without reports, got %v", manager.Record.DirectReports)
	}

	if err := f.svc.Delete(ctx, DeleteRecordInput{ID: 11}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_GetWithDirectReports_RepairsStaleReferences(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.overlay.entries = []OverlayEntry{
		{ID: 10, Name: "Barbara Liskov", Position: "Lead", Active: true, HireDate: date(2023, 1, 1), DirectReports: []int64{3, 99}},
	}
	ctx := context.Background()

	first, err := f.svc.GetWithDirectReports(ctx, GetRecordInput{ID: 10})
	if err != nil {
		t.Fatalf("GetWithDirectReports returned error: %v", err)
	}
	second, err := f.svc.GetWithDirectReports(ctx, GetRecordInput{ID: 10})
	if err != nil {
		t.Fatalf("GetWithDirectReports returned error: %v", err)
	}

	if diff := cmp.Diff([]int64{3}, first.Record.DirectReports); diff != "" {
		t.Fatalf("unexpected repaired reports (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first.Record.DirectReports, second.Record.DirectReports); diff != "" {
		t.Fatalf("repair must be idempotent (-first +second):\n%s", diff)
	}
	stored, _ := f.overlay.find(10)
	if diff := cmp.Diff([]int64{3}, stored.DirectReports); diff != "" {
		t.Fatalf("repair must be persisted (-want +got):\n%s", diff)
	}
}

func TestService_GetWithDirectReports_PersistFailure(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	f.overlay.saveErr = errDisk

	if _, err := f.svc.GetWithDirectReports(context.Background(), GetRecordInput{ID: 1}); !errors.Is(err, ErrStoreIO) {
		t.Fatalf("expected ErrStoreIO, got %v", err)
	}
	if _, err := f.svc.GetWithDirectReports(context.Background(), GetRecordInput{ID: 3}); err != nil {
		t.Fatalf("record without reports should not persist, got %v", err)
	}
}

func TestService_ListByHireDateRange(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t,
		Record{ID: 1, Name: "Ada Lovelace", Position: "CEO", Active: true, HireDate: date(2023, 1, 1)},
		Record{ID: 2, Name: "Grace Hopper", Position: "CTO", Active: true, HireDate: date(2023, 6, 15)},
		Record{ID: 3, Name: "Alan Turing", Position: "Eng", Active: true, HireDate: date(2023, 12, 31)},
		Record{ID: 4, Name: "No Date", Position: "Eng", Active: true},
	)

	records, err := f.svc.ListByHireDateRange(context.Background(), HireDateRangeInput{
		Start: date(2023, 1, 1),
		End:   date(2023, 6, 15),
	})
	if err != nil {
		t.Fatalf("ListByHireDateRange returned error: %v", err)
	}
	if diff := cmp.Diff([]int64{2, 1}, idsOf(records)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestService_ListByHireDateRange_StripsTimeOfDay(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	start := time.Date(2021, 3, 1, 22, 0, 0, 0, time.UTC)
	end := time.Date(2021, 3, 1, 1, 0, 0, 0, time.UTC)

	records, err := f.svc.ListByHireDateRange(context.Background(), HireDateRangeInput{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("ListByHireDateRange returned error: %v", err)
	}
	if diff := cmp.Diff([]int64{2}, idsOf(records)); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestService_ListByHireDateRange_Invalid(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	tomorrow := date(2024, 1, 11)

	tests := []struct {
		name string
		in   HireDateRangeInput
	}{
		{name: "missing start", in: HireDateRangeInput{End: date(2023, 1, 1)}},
		{name: "missing end", in: HireDateRangeInput{Start: date(2023, 1, 1)}},
		{name: "future end", in: HireDateRangeInput{Start: date(2023, 1, 1), End: tomorrow}},
		{name: "future start", in: HireDateRangeInput{Start: tomorrow, End: tomorrow}},
		{name: "start after end", in: HireDateRangeInput{Start: date(2023, 6, 1), End: date(2023, 1, 1)}},
	}

	for _, tt := range tests {
		if _, err := f.svc.ListByHireDateRange(context.Background(), tt.in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tt.name, err)
		}
	}
}

func TestService_ConcurrentCreatesAreSerialised(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := int64(0); i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.svc.Create(ctx, CreateRecordInput{
				ID: int64Ptr(100 + id), Name: "Worker Bee", Position: "Eng", HireDate: date(2023, 1, 1), ManagerID: int64Ptr(1),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	records, err := f.svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(records) != 23 {
		t.Fatalf("expected no lost updates, got %d records", len(records))
	}
}
