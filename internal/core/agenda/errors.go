package agenda

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation はエンティティ生成時のフィールド検証に失敗した場合に返却されます。
	ErrValidation = errors.New("agenda: validation failed")
	// ErrDuplicateID はバッチ内で社員 ID が重複している場合に返却されます。
	ErrDuplicateID = errors.New("agenda: duplicate ids")
	// ErrAlreadyExists は社員 ID が既に登録済みの場合に返却されます。
	ErrAlreadyExists = errors.New("agenda: employee already exists")
	// ErrConsistency は職種・部署の ID が登録済みの値と矛盾する場合に返却されます。
	ErrConsistency = errors.New("agenda: inconsistent reference")
	// ErrNotFound は参照した ID が登録されていない場合に返却されます。
	ErrNotFound = errors.New("agenda: not found")
)

// ValidationError はフィールド単位の検証エラーです。
type ValidationError struct {
	Entity string
	Field  string
	Value  any
	Reason string
}

func invalid(entity, field string, value any, reason string) *ValidationError {
	return &ValidationError{Entity: entity, Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s %v: %s", e.Entity, e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DuplicateIDError はバッチ内の社員 ID 重複を表します。
type DuplicateIDError struct {
	ID int64
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate ids: employee %d appears more than once in batch", e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// AlreadyExistsError は登録済み社員との ID 衝突を表します。
type AlreadyExistsError struct {
	ID       int64
	Existing Employee
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("employee with id %d already exists", e.ID)
}

func (e *AlreadyExistsError) Unwrap() error { return ErrAlreadyExists }

// ConsistencyError は同じ ID の職種または部署が異なる値で登録済みであることを表します。
type ConsistencyError struct {
	Kind     string
	ID       int64
	Stored   string
	Proposed string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s with id %d already exists with different values (stored %q, got %q)", e.Kind, e.ID, e.Stored, e.Proposed)
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }

// NotFoundError は未登録の社員・職種・部署の参照を表します。
// Registry 自体は comma-ok で応答し、API アダプタがこのエラーに変換します。
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
