package roster

// Hierarchy は名簿上の上司と直属の部下の関係を保守します。
// 部下 ID から上司 ID への副索引を保持し、変更のたびに名簿と同時に更新します。
// DirectReports は常に新しいスライスを割り当てて差し替え、既存のスライスは書き換えません。
type Hierarchy struct {
	roster     *Roster
	managersOf map[int64][]int64
}

// NewHierarchy は roster の DirectReports から副索引を構築します。
func NewHierarchy(roster *Roster) *Hierarchy {
	h := &Hierarchy{
		roster:     roster,
		managersOf: make(map[int64][]int64),
	}
	for _, rec := range roster.Records() {
		h.index(rec.ID, rec.DirectReports)
	}
	return h
}

// Roster は管理対象の名簿を返します。
func (h *Hierarchy) Roster() *Roster {
	return h.roster
}

// ManagersOf は reportID を直属の部下として参照している上司の ID を返します。
func (h *Hierarchy) ManagersOf(reportID int64) []int64 {
	return cloneIDs(h.managersOf[reportID])
}

// AttachToManager は managerID の DirectReports に reportID を追加します。
// 上司が存在しなければ ErrManagerNotFound、非アクティブなら ErrInactiveManager を返します。
func (h *Hierarchy) AttachToManager(reportID, managerID int64) error {
	manager, ok := h.roster.Get(managerID)
	if !ok {
		return ErrManagerNotFound
	}
	if !manager.Active {
		return ErrInactiveManager
	}
	if containsID(manager.DirectReports, reportID) {
		return nil
	}

	reports := make([]int64, 0, len(manager.DirectReports)+1)
	reports = append(reports, manager.DirectReports...)
	manager.DirectReports = append(reports, reportID)
	h.roster.Put(manager)
	h.managersOf[reportID] = appendUnique(h.managersOf[reportID], managerID)
	return nil
}

// Add はレコードを名簿に追加し、その DirectReports を索引に登録します。
func (h *Hierarchy) Add(rec Record) {
	if existing, ok := h.roster.Get(rec.ID); ok {
		h.unindex(existing.ID, existing.DirectReports)
	}
	h.roster.Put(rec)
	h.index(rec.ID, rec.DirectReports)
}

// Detach は id を参照しているすべての上司の DirectReports から id を取り除き、更新した上司の数を返します。
func (h *Hierarchy) Detach(id int64) int {
	managers := h.managersOf[id]
	updated := 0
	for _, managerID := range managers {
		manager, ok := h.roster.Get(managerID)
		if !ok {
			continue
		}
		manager.DirectReports = removeID(manager.DirectReports, id)
		h.roster.Put(manager)
		updated++
	}
	delete(h.managersOf, id)
	recordHierarchyRepair("detach", updated)
	return updated
}

// Deactivate は id を上司から切り離したうえで非アクティブにし、自身の DirectReports を空にします。
func (h *Hierarchy) Deactivate(id int64) (Record, error) {
	if _, ok := h.roster.Get(id); !ok {
		return Record{}, ErrRecordNotFound
	}
	h.Detach(id)

	rec, _ := h.roster.Get(id)
	h.unindex(rec.ID, rec.DirectReports)
	rec.Active = false
	rec.DirectReports = []int64{}
	h.roster.Put(rec)
	return rec, nil
}

// Remove は id を上司から切り離したうえで名簿から取り除きます。
func (h *Hierarchy) Remove(id int64) error {
	rec, ok := h.roster.Get(id)
	if !ok {
		return ErrRecordNotFound
	}
	h.Detach(id)

	rec, _ = h.roster.Get(id)
	h.unindex(rec.ID, rec.DirectReports)
	h.roster.Remove(id)
	return nil
}

// RepairReports は id の DirectReports を名簿に存在する ID だけに絞り込みます。
// 絞り込み後のレコード、解決済みの部下、参照を取り除いたかどうかを返します。
func (h *Hierarchy) RepairReports(id int64) (Record, []Record, bool, error) {
	rec, ok := h.roster.Get(id)
	if !ok {
		return Record{}, nil, false, ErrRecordNotFound
	}

	kept := make([]int64, 0, len(rec.DirectReports))
	reports := make([]Record, 0, len(rec.DirectReports))
	var stale []int64
	for _, reportID := range rec.DirectReports {
		report, ok := h.roster.Get(reportID)
		if !ok {
			stale = append(stale, reportID)
			continue
		}
		kept = append(kept, reportID)
		reports = append(reports, report)
	}

	if len(stale) == 0 {
		return rec, reports, false, nil
	}

	h.unindex(rec.ID, stale)
	rec.DirectReports = kept
	h.roster.Put(rec)
	recordHierarchyRepair("stale_reference", len(stale))
	return rec, reports, true, nil
}

func (h *Hierarchy) index(managerID int64, reports []int64) {
	for _, reportID := range reports {
		h.managersOf[reportID] = appendUnique(h.managersOf[reportID], managerID)
	}
}

func (h *Hierarchy) unindex(managerID int64, reports []int64) {
	for _, reportID := range reports {
		remaining := removeID(h.managersOf[reportID], managerID)
		if len(remaining) == 0 {
			delete(h.managersOf, reportID)
			continue
		}
		h.managersOf[reportID] = remaining
	}
}

func containsID(ids []int64, id int64) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func appendUnique(ids []int64, id int64) []int64 {
	if containsID(ids, id) {
		return ids
	}
	out := make([]int64, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}
