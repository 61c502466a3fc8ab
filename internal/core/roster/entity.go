package roster

import "time"

// Record は名簿上の 1 人分のレコードです。
// ID は外部から割り当てられ、ストアが採番することはありません。
type Record struct {
	ID            int64
	Name          string
	Position      string
	Active        bool
	HireDate      *time.Time
	DirectReports []int64
	// IsBase は基底データセット由来かどうかを表します。オーバーレイには保存されません。
	IsBase bool
}

// OverlayEntry はオーバーレイに永続化される 1 件分のエントリです。
// 基底レコードの ID を持つ場合は上書き、それ以外は新規レコードを表します。
type OverlayEntry struct {
	ID            int64
	Name          string
	Position      string
	Active        bool
	HireDate      *time.Time
	DirectReports []int64
}

// RecordWithReports は直属の部下を解決済みのレコードです。
type RecordWithReports struct {
	Record        Record
	DirectReports []Record
}

func (e OverlayEntry) toRecord() Record {
	return Record{
		ID:            e.ID,
		Name:          e.Name,
		Position:      e.Position,
		Active:        e.Active,
		HireDate:      cloneTime(e.HireDate),
		DirectReports: cloneIDs(e.DirectReports),
	}
}

func entryFromRecord(r Record) OverlayEntry {
	return OverlayEntry{
		ID:            r.ID,
		Name:          r.Name,
		Position:      r.Position,
		Active:        r.Active,
		HireDate:      cloneTime(r.HireDate),
		DirectReports: cloneIDs(r.DirectReports),
	}
}

// Clone はスライスと日付を共有しないコピーを返します。
func (r Record) Clone() Record {
	out := r
	out.HireDate = cloneTime(r.HireDate)
	out.DirectReports = cloneIDs(r.DirectReports)
	return out
}

// LastName は "First Last" 形式の名前から並び替えキーを取り出します。
// 2 語目が存在しない場合は名前全体を返します。
func (r Record) LastName() string {
	fields := splitName(r.Name)
	if len(fields) < 2 {
		return r.Name
	}
	return fields[1]
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	dup := *t
	return &dup
}

func cloneIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
