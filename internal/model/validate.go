package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// minYear/maxYear bound the accepted plan years. Wide on purpose; the check
// exists to catch two-digit years and typos, not to police planning horizons.
const (
	minYear = 2000
	maxYear = 2100
)

// ValidatePlan checks a Plan for constraint violations.
func ValidatePlan(p *Plan) error {
	var ve ValidationError

	if strings.TrimSpace(p.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	}
	if p.Year < minYear || p.Year > maxYear {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "year",
			Message: fmt.Sprintf("must be between %d and %d, got %d", minYear, maxYear, p.Year),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateObjective checks an Objective for constraint violations.
func ValidateObjective(o *Objective) error {
	var ve ValidationError

	if strings.TrimSpace(o.Name) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	}
	if o.PlanID == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "plan_id", Message: "is required"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateKeyResult checks a KeyResult for constraint violations.
// A KR with target == start is accepted (see KeyResult.Degenerate); rejecting
// it here would break plans imported from older data.
func ValidateKeyResult(kr *KeyResult) error {
	var ve ValidationError

	title := strings.TrimSpace(kr.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	if kr.ObjectiveID == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "objective_id", Message: "is required"})
	}

	if !kr.KrType.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "kr_type",
			Message: fmt.Sprintf("invalid value %q", kr.KrType),
		})
	}

	if !kr.Direction.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "direction",
			Message: fmt.Sprintf("invalid value %q", kr.Direction),
		})
	}

	if kr.Year < minYear || kr.Year > maxYear {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "year",
			Message: fmt.Sprintf("must be between %d and %d, got %d", minYear, maxYear, kr.Year),
		})
	}

	// Direction must agree with start/target ordering for ratio types.
	if !kr.KrType.Binary() {
		switch kr.Direction {
		case DirectionIncrease:
			if kr.TargetValue < kr.StartValue {
				ve.Errors = append(ve.Errors, FieldError{
					Field:   "target_value",
					Message: "must be >= start_value when direction is increase",
				})
			}
		case DirectionDecrease:
			if kr.TargetValue > kr.StartValue {
				ve.Errors = append(ve.Errors, FieldError{
					Field:   "target_value",
					Message: "must be <= start_value when direction is decrease",
				})
			}
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateCheckIn checks a CheckIn for constraint violations.
func ValidateCheckIn(c *CheckIn) error {
	var ve ValidationError

	if c.KrID == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "kr_id", Message: "is required"})
	}
	if c.RecordedAt.IsZero() {
		ve.Errors = append(ve.Errors, FieldError{Field: "recorded_at", Message: "is required"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateQuarterTarget checks a QuarterTarget for constraint violations.
func ValidateQuarterTarget(q *QuarterTarget) error {
	var ve ValidationError

	if q.KrID == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "kr_id", Message: "is required"})
	}
	if q.Quarter < 1 || q.Quarter > 4 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "quarter",
			Message: fmt.Sprintf("must be between 1 and 4, got %d", q.Quarter),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateTask checks a Task for constraint violations.
func ValidateTask(t *Task) error {
	var ve ValidationError

	title := strings.TrimSpace(t.Title)
	if title == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	} else if len([]rune(title)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "must be 500 characters or fewer"})
	}

	if t.Priority < 0 || t.Priority > 4 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "priority",
			Message: fmt.Sprintf("must be between 0 and 4, got %d", t.Priority),
		})
	}

	if !t.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", t.Status),
		})
	}

	// CompletedAt consistency with Status.
	if t.Status == TaskCompleted && t.CompletedAt == nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "completed_at",
			Message: "is required when status is completed",
		})
	}
	if t.Status != TaskCompleted && t.CompletedAt != nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "completed_at",
			Message: "must be nil when status is not completed",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
