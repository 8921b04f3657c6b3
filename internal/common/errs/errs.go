// Package errs defines the error taxonomy shared by the reporting and
// metric services. Callers branch with errors.As / errors.Is so that a
// failed aggregate can degrade to a neutral value while a bad filter
// blocks the whole request.
package errs

import "fmt"

// InvalidRangeError reports a filter whose from-date is after its to-date.
type InvalidRangeError struct {
	From string
	To   string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: from %s is after to %s", e.From, e.To)
}

// QueryExecutionError wraps a clinical data store failure, including
// malformed generated SQL.
type QueryExecutionError struct {
	Op  string
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Op, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// NewQueryError wraps err as a QueryExecutionError tagged with the
// aggregate it belongs to.
func NewQueryError(op string, err error) error {
	return &QueryExecutionError{Op: op, Err: err}
}

// MalformedDefinitionError reports a custom metric definition missing a
// required field.
type MalformedDefinitionError struct {
	Field string
}

func (e *MalformedDefinitionError) Error() string {
	return fmt.Sprintf("malformed metric definition: %s is required", e.Field)
}

// MetricExecutionError wraps a custom metric run failure.
type MetricExecutionError struct {
	MetricID string
	Err      error
}

func (e *MetricExecutionError) Error() string {
	return fmt.Sprintf("metric %s execution failed: %v", e.MetricID, e.Err)
}

func (e *MetricExecutionError) Unwrap() error { return e.Err }

// NotFoundError reports a delete or update against a missing id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
