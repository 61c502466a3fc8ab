package roster

import (
	"errors"
	"fmt"
)

// エラー種別です。個別のエラーはいずれかの種別を wrap しているため errors.Is で判定できます。
var (
	ErrNotFound               = errors.New("roster: not found")
	ErrInvalidInput           = errors.New("roster: invalid input")
	ErrAlreadyActive          = errors.New("roster: already active")
	ErrAlreadyInactive        = errors.New("roster: already inactive")
	ErrCannotDeleteBaseRecord = errors.New("roster: cannot delete base record")
	ErrStoreIO                = errors.New("roster: store io")
)

var (
	ErrRecordNotFound      = fmt.Errorf("%w: record", ErrNotFound)
	ErrManagerNotFound     = fmt.Errorf("%w: manager", ErrNotFound)
	ErrInactiveManager     = fmt.Errorf("%w: manager is inactive", ErrInvalidInput)
	ErrInvalidID           = fmt.Errorf("%w: id is required", ErrInvalidInput)
	ErrDuplicateID         = fmt.Errorf("%w: id already exists", ErrInvalidInput)
	ErrInvalidName         = fmt.Errorf("%w: name is required", ErrInvalidInput)
	ErrInvalidPosition     = fmt.Errorf("%w: position is required", ErrInvalidInput)
	ErrInvalidHireDate     = fmt.Errorf("%w: hire date", ErrInvalidInput)
	ErrInvalidDateRange    = fmt.Errorf("%w: hire date range", ErrInvalidInput)
	ErrUnknownDirectReport = fmt.Errorf("%w: direct report not found", ErrInvalidInput)
)
