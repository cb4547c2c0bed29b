// Package outcome defines the result taxonomy returned by the workflow
// engine services. Handlers translate these values to transport status
// codes; the services themselves never construct HTTP errors.
package outcome

// Kind classifies an engine decision.
type Kind string

const (
	KindOK         Kind = "OK"
	KindValidation Kind = "VALIDATION"
	KindForbidden  Kind = "FORBIDDEN"
	KindConflict   Kind = "CONFLICT"
	KindNotFound   Kind = "NOT_FOUND"
)

// FieldError is a field-qualified validation message. Path uses dot
// notation for nested fields (e.g. "vitals.systolicBP").
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result is the single return shape of every engine operation.
type Result struct {
	Kind         Kind         `json:"kind"`
	Data         interface{}  `json:"data,omitempty"`
	NextStatus   string       `json:"next_status,omitempty"`
	FieldErrors  []FieldError `json:"field_errors,omitempty"`
	MissingItems []string     `json:"missing_items,omitempty"`
	Reason       string       `json:"reason,omitempty"`
}

// Ok reports whether the operation succeeded.
func (r Result) Ok() bool { return r.Kind == KindOK }

func OK(data interface{}) Result {
	return Result{Kind: KindOK, Data: data}
}

// OKWithStatus is OK plus the status the entity advanced to.
func OKWithStatus(data interface{}, nextStatus string) Result {
	return Result{Kind: KindOK, Data: data, NextStatus: nextStatus}
}

func Validation(errs []FieldError) Result {
	return Result{Kind: KindValidation, FieldErrors: errs}
}

// ValidationMissing reports a validation failure driven by a missing-items
// checklist rather than per-field structural errors.
func ValidationMissing(reason string, missing []string) Result {
	return Result{Kind: KindValidation, Reason: reason, MissingItems: missing}
}

func Forbidden(reason string) Result {
	return Result{Kind: KindForbidden, Reason: reason}
}

func Conflict(reason string) Result {
	return Result{Kind: KindConflict, Reason: reason}
}

func NotFound(reason string) Result {
	return Result{Kind: KindNotFound, Reason: reason}
}
