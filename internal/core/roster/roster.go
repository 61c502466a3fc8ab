package roster

import "strings"

// Roster は挿入順を保持した ID 単位のレコード集合です。
type Roster struct {
	order   []int64
	records map[int64]Record
}

// NewRoster は records を挿入順に保持する Roster を生成します。同じ ID は後勝ちです。
func NewRoster(records ...Record) *Roster {
	r := &Roster{records: make(map[int64]Record, len(records))}
	for _, rec := range records {
		r.Put(rec)
	}
	return r
}

// Len はレコード数を返します。
func (r *Roster) Len() int {
	return len(r.order)
}

// Get は ID でレコードを取得します。
func (r *Roster) Get(id int64) (Record, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// Contains は ID が存在するかを返します。
func (r *Roster) Contains(id int64) bool {
	_, ok := r.records[id]
	return ok
}

// Put はレコードを追加、または同じ位置のまま置き換えます。
func (r *Roster) Put(rec Record) {
	if _, ok := r.records[rec.ID]; !ok {
		r.order = append(r.order, rec.ID)
	}
	r.records[rec.ID] = rec
}

// Remove はレコードを取り除きます。存在しなければ false を返します。
func (r *Roster) Remove(id int64) bool {
	if _, ok := r.records[id]; !ok {
		return false
	}
	delete(r.records, id)
	for idx, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:idx:idx], r.order[idx+1:]...)
			break
		}
	}
	return true
}

// Records は挿入順のレコード一覧を返します。
func (r *Roster) Records() []Record {
	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

// IDs は挿入順の ID 一覧を返します。
func (r *Roster) IDs() []int64 {
	out := make([]int64, len(r.order))
	copy(out, r.order)
	return out
}

func splitName(name string) []string {
	return strings.Fields(name)
}
