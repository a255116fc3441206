//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import "fmt"

// NotInitializedError indicates no .kwaci workspace exists here or above.
type NotInitializedError struct{}

func (e NotInitializedError) Error() string {
	return "kwaci not initialized: run 'kwaci init' first"
}

// AlreadyInitializedError indicates .kwaci already exists.
type AlreadyInitializedError struct{}

func (e AlreadyInitializedError) Error() string {
	return "kwaci already initialized"
}

// TaskNotFoundError indicates the task id doesn't match any record.
type TaskNotFoundError struct {
	ID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// PlanNotFoundError indicates the plan id doesn't match any record.
type PlanNotFoundError struct {
	ID string
}

func (e PlanNotFoundError) Error() string {
	return fmt.Sprintf("plan not found: %s", e.ID)
}

// NoPlanSelectedError indicates a plan-scoped command ran without a plan id
// and no current plan is configured.
type NoPlanSelectedError struct{}

func (e NoPlanSelectedError) Error() string {
	return "no plan selected: pass --plan or run 'kwaci plan use <id>'"
}
