package rosterv1

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"
)

// DateLayout は API 上の日付表現です。
const DateLayout = "2006-01-02"

// メッセージのフィールド名です。
const (
	FieldRecords       = "records"
	FieldRecord        = "record"
	FieldDirectReports = "direct_reports"
	FieldID            = "id"
	FieldName          = "name"
	FieldPosition      = "position"
	FieldActive        = "active"
	FieldHireDate      = "hire_date"
	FieldIsBase        = "is_base"
	FieldManagerID     = "manager_id"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
)

// maxExactID は float64 で誤差なく表現できる最大の整数です。
const maxExactID = 1 << 53

// ErrInvalidMessage はメッセージの形式が不正な場合のエラーです。
var ErrInvalidMessage = errors.New("rosterv1: invalid message")

// Record は API 上のレコード表現です。HireDate が空文字の場合は null として送られます。
type Record struct {
	ID            int64
	Name          string
	Position      string
	Active        bool
	HireDate      string
	DirectReports []int64
	IsBase        bool
}

// CreateRequest は CreateRecord の入力です。
type CreateRequest struct {
	ID            *int64
	Name          string
	Position      string
	HireDate      string
	DirectReports []int64
	ManagerID     *int64
}

// HireDateRange は ListRecordsByHireDate の入力です。
type HireDateRange struct {
	StartDate string
	EndDate   string
}

// Value は Record を structpb.Value に変換します。
func (r Record) Value() *structpb.Value {
	return structpb.NewStructValue(r.Struct())
}

// Struct は Record を structpb.Struct に変換します。
func (r Record) Struct() *structpb.Struct {
	hireDate := structpb.NewNullValue()
	if r.HireDate != "" {
		hireDate = structpb.NewStringValue(r.HireDate)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldID:            structpb.NewNumberValue(float64(r.ID)),
		FieldName:          structpb.NewStringValue(r.Name),
		FieldPosition:      structpb.NewStringValue(r.Position),
		FieldActive:        structpb.NewBoolValue(r.Active),
		FieldHireDate:      hireDate,
		FieldDirectReports: idListValue(r.DirectReports),
		FieldIsBase:        structpb.NewBoolValue(r.IsBase),
	}}
}

// RecordsResponse は records フィールドにレコード一覧を持つレスポンスを組み立てます。
func RecordsResponse(records []Record) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldRecords: recordListValue(records),
	}}
}

// RecordResponse は record フィールドに 1 件のレコードを持つレスポンスを組み立てます。
func RecordResponse(record Record) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldRecord: record.Value(),
	}}
}

// RecordWithReportsResponse はレコードと解決済みの直属の部下を持つレスポンスを組み立てます。
func RecordWithReportsResponse(record Record, reports []Record) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldRecord:        record.Value(),
		FieldDirectReports: recordListValue(reports),
	}}
}

// DecodeRecords は RecordsResponse の形式のレスポンスを読み取ります。
func DecodeRecords(msg *structpb.Struct) ([]Record, error) {
	return recordList(msg.GetFields()[FieldRecords], FieldRecords)
}

// DecodeRecord は RecordResponse の形式のレスポンスを読み取ります。
func DecodeRecord(msg *structpb.Struct) (Record, error) {
	inner := msg.GetFields()[FieldRecord].GetStructValue()
	if inner == nil {
		return Record{}, fmt.Errorf("%w: %s must be an object", ErrInvalidMessage, FieldRecord)
	}
	return recordFromStruct(inner)
}

// DecodeRecordWithReports は RecordWithReportsResponse の形式のレスポンスを読み取ります。
func DecodeRecordWithReports(msg *structpb.Struct) (Record, []Record, error) {
	record, err := DecodeRecord(msg)
	if err != nil {
		return Record{}, nil, err
	}
	reports, err := recordList(msg.GetFields()[FieldDirectReports], FieldDirectReports)
	if err != nil {
		return Record{}, nil, err
	}
	return record, reports, nil
}

// Struct は CreateRequest を structpb.Struct に変換します。
func (c CreateRequest) Struct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldName:          structpb.NewStringValue(c.Name),
		FieldPosition:      structpb.NewStringValue(c.Position),
		FieldDirectReports: idListValue(c.DirectReports),
	}
	if c.ID != nil {
		fields[FieldID] = structpb.NewNumberValue(float64(*c.ID))
	}
	if c.HireDate != "" {
		fields[FieldHireDate] = structpb.NewStringValue(c.HireDate)
	}
	if c.ManagerID != nil {
		fields[FieldManagerID] = structpb.NewNumberValue(float64(*c.ManagerID))
	}
	return &structpb.Struct{Fields: fields}
}

// ParseCreateRequest は CreateRecord のリクエストを読み取ります。
// 省略または null のフィールドは未指定として扱います。
func ParseCreateRequest(msg *structpb.Struct) (CreateRequest, error) {
	fields := msg.GetFields()

	id, err := optionalID(fields, FieldID)
	if err != nil {
		return CreateRequest{}, err
	}
	managerID, err := optionalID(fields, FieldManagerID)
	if err != nil {
		return CreateRequest{}, err
	}
	name, err := optionalString(fields, FieldName)
	if err != nil {
		return CreateRequest{}, err
	}
	position, err := optionalString(fields, FieldPosition)
	if err != nil {
		return CreateRequest{}, err
	}
	hireDate, err := optionalString(fields, FieldHireDate)
	if err != nil {
		return CreateRequest{}, err
	}
	reports, err := idList(fields[FieldDirectReports], FieldDirectReports)
	if err != nil {
		return CreateRequest{}, err
	}

	return CreateRequest{
		ID:            id,
		Name:          name,
		Position:      position,
		HireDate:      hireDate,
		DirectReports: reports,
		ManagerID:     managerID,
	}, nil
}

// Struct は HireDateRange を structpb.Struct に変換します。
func (h HireDateRange) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldStartDate: structpb.NewStringValue(h.StartDate),
		FieldEndDate:   structpb.NewStringValue(h.EndDate),
	}}
}

// ParseHireDateRange は ListRecordsByHireDate のリクエストを読み取ります。
func ParseHireDateRange(msg *structpb.Struct) (HireDateRange, error) {
	fields := msg.GetFields()
	start, err := optionalString(fields, FieldStartDate)
	if err != nil {
		return HireDateRange{}, err
	}
	end, err := optionalString(fields, FieldEndDate)
	if err != nil {
		return HireDateRange{}, err
	}
	return HireDateRange{StartDate: start, EndDate: end}, nil
}

func recordFromStruct(msg *structpb.Struct) (Record, error) {
	fields := msg.GetFields()

	id, err := optionalID(fields, FieldID)
	if err != nil {
		return Record{}, err
	}
	if id == nil {
		return Record{}, fmt.Errorf("%w: %s is required", ErrInvalidMessage, FieldID)
	}
	name, err := optionalString(fields, FieldName)
	if err != nil {
		return Record{}, err
	}
	position, err := optionalString(fields, FieldPosition)
	if err != nil {
		return Record{}, err
	}
	hireDate, err := optionalString(fields, FieldHireDate)
	if err != nil {
		return Record{}, err
	}
	reports, err := idList(fields[FieldDirectReports], FieldDirectReports)
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:            *id,
		Name:          name,
		Position:      position,
		Active:        fields[FieldActive].GetBoolValue(),
		HireDate:      hireDate,
		DirectReports: reports,
		IsBase:        fields[FieldIsBase].GetBoolValue(),
	}, nil
}

func recordListValue(records []Record) *structpb.Value {
	values := make([]*structpb.Value, 0, len(records))
	for _, r := range records {
		values = append(values, r.Value())
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func recordList(v *structpb.Value, field string) ([]Record, error) {
	if isNull(v) {
		return []Record{}, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s must be a list", ErrInvalidMessage, field)
	}
	records := make([]Record, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		inner := item.GetStructValue()
		if inner == nil {
			return nil, fmt.Errorf("%w: %s[%d] must be an object", ErrInvalidMessage, field, i)
		}
		record, err := recordFromStruct(inner)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func idListValue(ids []int64) *structpb.Value {
	values := make([]*structpb.Value, 0, len(ids))
	for _, id := range ids {
		values = append(values, structpb.NewNumberValue(float64(id)))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func idList(v *structpb.Value, field string) ([]int64, error) {
	if isNull(v) {
		return []int64{}, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s must be a list", ErrInvalidMessage, field)
	}
	ids := make([]int64, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		id, err := toID(item, fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func optionalID(fields map[string]*structpb.Value, field string) (*int64, error) {
	v := fields[field]
	if isNull(v) {
		return nil, nil
	}
	id, err := toID(v, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toID(v *structpb.Value, field string) (int64, error) {
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidMessage, field)
	}
	f := num.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactID {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidMessage, field)
	}
	return int64(f), nil
}

func optionalString(fields map[string]*structpb.Value, field string) (string, error) {
	v := fields[field]
	if isNull(v) {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidMessage, field)
	}
	return s.StringValue, nil
}

func isNull(v *structpb.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok
}
