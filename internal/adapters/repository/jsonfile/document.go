package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
)

// hireDateLayout はデータファイル上の入社日の書式 (MM/DD/YYYY) です。
const hireDateLayout = "01/02/2006"

type document struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Position      string    `json:"position"`
	Active        bool      `json:"active"`
	HireDate      *hireDate `json:"hireDate"`
	DirectReports []int64   `json:"directReports"`
}

type hireDate struct {
	time.Time
}

func (d hireDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(hireDateLayout))
}

func (d *hireDate) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("hireDate: %w", err)
	}
	t, err := time.ParseInLocation(hireDateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return fmt.Errorf("hireDate: invalid format %q, expected MM/DD/YYYY", raw)
	}
	d.Time = t
	return nil
}

func decodeDocuments(b []byte) ([]document, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return []document{}, nil
	}
	var docs []document
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func encodeDocuments(docs []document) ([]byte, error) {
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func (d document) toRecord() roster.Record {
	return roster.Record{
		ID:            d.ID,
		Name:          d.Name,
		Position:      d.Position,
		Active:        d.Active,
		HireDate:      d.hireDatePtr(),
		DirectReports: cloneIDs(d.DirectReports),
	}
}

func (d document) toEntry() roster.OverlayEntry {
	return roster.OverlayEntry{
		ID:            d.ID,
		Name:          d.Name,
		Position:      d.Position,
		Active:        d.Active,
		HireDate:      d.hireDatePtr(),
		DirectReports: cloneIDs(d.DirectReports),
	}
}

func documentFromEntry(e roster.OverlayEntry) document {
	doc := document{
		ID:            e.ID,
		Name:          e.Name,
		Position:      e.Position,
		Active:        e.Active,
		DirectReports: cloneIDs(e.DirectReports),
	}
	if e.HireDate != nil {
		doc.HireDate = &hireDate{Time: *e.HireDate}
	}
	return doc
}

func (d document) hireDatePtr() *time.Time {
	if d.HireDate == nil {
		return nil
	}
	t := d.HireDate.UTC()
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}

func cloneIDs(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
