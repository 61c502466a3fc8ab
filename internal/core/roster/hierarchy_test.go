package roster

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHierarchy_AttachToManager(t *testing.T) {
	t.Parallel()

	roster := NewRoster(baseRecords()...)
	original, _ := roster.Get(1)
	h := NewHierarchy(roster)

	if err := h.AttachToManager(10, 1); err != nil {
		t.Fatalf("AttachToManager returned error: %v", err)
	}

	manager, _ := roster.Get(1)
	if diff := cmp.Diff([]int64{2, 3, 10}, manager.DirectReports); diff != "" {
		t.Fatalf("unexpected direct reports (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{2, 3}, original.DirectReports); diff != "" {
		t.Fatalf("previous slice must not be mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1}, h.ManagersOf(10)); diff != "" {
		t.Fatalf("index not updated (-want +got):\n%s", diff)
	}
}

func TestHierarchy_AttachToManager_Errors(t *testing.T) {
	t.Parallel()

	records := baseRecords()
	records[1].Active = false
	h := NewHierarchy(NewRoster(records...))

	if err := h.AttachToManager(10, 42); !errors.Is(err, ErrManagerNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrManagerNotFound, got %v", err)
	}
	if err := h.AttachToManager(10, 2); !errors.Is(err, ErrInactiveManager) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInactiveManager, got %v", err)
	}
}

func TestHierarchy_Deactivate_DetachesFromEveryManager(t *testing.T) {
	t.Parallel()

	records := baseRecords()
	// 2 も 3 を参照している不整合な状態
	records[1].DirectReports = []int64{3}
	roster := NewRoster(records...)
	h := NewHierarchy(roster)

	if diff := cmp.Diff([]int64{1, 2}, h.ManagersOf(3)); diff != "" {
		t.Fatalf("unexpected managers (-want +got):\n%s", diff)
	}

	rec, err := h.Deactivate(3)
	if err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if rec.Active || len(rec.DirectReports) != 0 {
		t.Fatalf("expected inactive record without reports, got %+v", rec)
	}

	first, _ := roster.Get(1)
	second, _ := roster.Get(2)
	if diff := cmp.Diff([]int64{2}, first.DirectReports); diff != "" {
		t.Fatalf("manager 1 not repaired (-want +got):\n%s", diff)
	}
	if len(second.DirectReports) != 0 {
		t.Fatalf("manager 2 not repaired: %+v", second.DirectReports)
	}
	if len(h.ManagersOf(3)) != 0 {
		t.Fatalf("index still references 3: %v", h.ManagersOf(3))
	}
}

func TestHierarchy_DeactivateManagerClearsReports(t *testing.T) {
	t.Parallel()

	roster := NewRoster(baseRecords()...)
	h := NewHierarchy(roster)

	rec, err := h.Deactivate(1)
	if err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if len(rec.DirectReports) != 0 {
		t.Fatalf("expected cleared reports, got %v", rec.DirectReports)
	}
	if len(h.ManagersOf(2)) != 0 || len(h.ManagersOf(3)) != 0 {
		t.Fatal("reports of a deactivated manager must lose their manager reference")
	}
}

func TestHierarchy_Remove(t *testing.T) {
	t.Parallel()

	roster := NewRoster(baseRecords()...)
	h := NewHierarchy(roster)

	if err := h.Remove(2); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if roster.Contains(2) {
		t.Fatal("record 2 should be removed")
	}
	manager, _ := roster.Get(1)
	if diff := cmp.Diff([]int64{3}, manager.DirectReports); diff != "" {
		t.Fatalf("unexpected direct reports (-want +got):\n%s", diff)
	}

	if err := h.Remove(2); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestHierarchy_RepairReports(t *testing.T) {
	t.Parallel()

	records := baseRecords()
	records[0].DirectReports = []int64{2, 77, 3, 78}
	roster := NewRoster(records...)
	h := NewHierarchy(roster)

	rec, reports, changed, err := h.RepairReports(1)
	if err != nil {
		t.Fatalf("RepairReports returned error: %v", err)
	}
	if !changed {
		t.Fatal("expected stale references to be removed")
	}
	if diff := cmp.Diff([]int64{2, 3}, rec.DirectReports); diff != "" {
		t.Fatalf("unexpected direct reports (-want +got):\n%s", diff)
	}
	if len(reports) != 2 || reports[0].ID != 2 || reports[1].ID != 3 {
		t.Fatalf("unexpected resolved reports: %+v", reports)
	}

	_, _, changed, err = h.RepairReports(1)
	if err != nil {
		t.Fatalf("RepairReports returned error: %v", err)
	}
	if changed {
		t.Fatal("second repair should be a no-op")
	}

	if _, _, _, err := h.RepairReports(404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoster_RemoveKeepsOrder(t *testing.T) {
	t.Parallel()

	roster := NewRoster(baseRecords()...)
	ids := roster.IDs()

	if !roster.Remove(2) {
		t.Fatal("expected removal")
	}
	if roster.Remove(2) {
		t.Fatal("second removal should report false")
	}
	if diff := cmp.Diff([]int64{1, 3}, roster.IDs()); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, ids); diff != "" {
		t.Fatalf("earlier IDs() result must not change (-want +got):\n%s", diff)
	}
}

func TestRecord_LastName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Ada Lovelace":     "Lovelace",
		"  Grace   Hopper": "Hopper",
		"Plato":            "Plato",
		"Jean Luc Picard":  "Luc",
	}
	for name, want := range tests {
		if got := (Record{Name: name}).LastName(); got != want {
			t.Errorf("LastName(%q) = %q, want %q", name, got, want)
		}
	}
}
