package post

import (
	"errors"
	"fmt"
)

// FieldProblem classifies why a record field was rejected.
type FieldProblem string

const (
	// ProblemMissing means a required field is absent, null or empty.
	ProblemMissing FieldProblem = "missing"
	// ProblemType means the field holds a value of the wrong type.
	ProblemType FieldProblem = "type"
	// ProblemInvalid means the field is well-typed but out of range.
	ProblemInvalid FieldProblem = "invalid"
)

// FieldError reports a record field that failed decoding or validation.
// An empty Field means the document as a whole could not be read.
type FieldError struct {
	Field   string
	Problem FieldProblem
	Detail  string
}

func (e *FieldError) Error() string {
	field := e.Field
	if field == "" {
		field = "<document>"
	}
	if e.Detail != "" {
		return fmt.Sprintf("post field %s: %s: %s", field, e.Problem, e.Detail)
	}
	return fmt.Sprintf("post field %s: %s", field, e.Problem)
}

// IsFieldError reports whether err is or wraps a *FieldError.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
