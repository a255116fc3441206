package task

import (
	"fmt"
	"strings"
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every field failure from one validation pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// HasErrors reports whether any failure was recorded.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ToError returns the collection as an error, or nil when empty.
func (e ValidationErrors) ToError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Validate checks field constraints. It does not check dependency existence
// or acyclicity; those need the whole plan and belong to the graph layer.
func (t *Task) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Value: t.Title, Message: "must not be empty"})
	}
	if strings.TrimSpace(t.Description) == "" {
		errs = append(errs, ValidationError{Field: "description", Value: t.Description, Message: "must not be empty"})
	}
	if !IsValidStatus(t.Status) {
		errs = append(errs, ValidationError{Field: "status", Value: t.Status, Message: "unknown status"})
	}
	if !IsValidCategory(t.Category) {
		errs = append(errs, ValidationError{Field: "category", Value: t.Category, Message: "unknown category"})
	}
	if !IsValidPriority(t.Priority) {
		errs = append(errs, ValidationError{Field: "priority", Value: t.Priority, Message: "unknown priority"})
	}
	if t.EstimatedDuration <= 0 {
		errs = append(errs, ValidationError{
			Field:   "estimated_duration",
			Value:   t.EstimatedDuration,
			Message: "must be a positive number of minutes",
		})
	}
	if t.ActualDuration != nil && *t.ActualDuration <= 0 {
		errs = append(errs, ValidationError{
			Field:   "actual_duration",
			Value:   *t.ActualDuration,
			Message: "must be a positive number of minutes",
		})
	}

	seen := make(map[string]bool, len(t.DependsOn))
	for _, dep := range t.DependsOn {
		if dep == t.ID && t.ID != "" {
			errs = append(errs, ValidationError{Field: "depends_on", Value: dep, Message: "task cannot depend on itself"})
			continue
		}
		if seen[dep] {
			errs = append(errs, ValidationError{Field: "depends_on", Value: dep, Message: "duplicate dependency"})
		}
		seen[dep] = true
	}

	return errs
}
