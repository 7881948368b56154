package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/devfeas/internal/domain"
)

// ScenarioTransform is one what-if adjustment to a feasibility scenario: a land
// price, a sale price movement, a delay, a rate shock or a strategy switch.
type ScenarioTransform interface {
	// Apply returns an adjusted copy. base is left untouched.
	Apply(base *domain.Scenario) (*domain.Scenario, error)

	// Name is the registry key, e.g. "adjust_land_price"
	Name() string

	Description() string

	// Validate reports whether the adjustment makes sense for base, e.g. a
	// mezzanine rate shock needs a mezzanine tier.
	Validate(base *domain.Scenario) error
}

// ApplyTransforms runs transforms left to right against a copy of base. Failures
// come back as a *TransformError naming the step.
func ApplyTransforms(base *domain.Scenario, transforms []ScenarioTransform) (*domain.Scenario, error) {
	if base == nil {
		return nil, errors.New("base scenario cannot be nil")
	}

	current := base.DeepCopy()
	for i, t := range transforms {
		if t == nil {
			return nil, fmt.Errorf("transform at index %d is nil", i)
		}
		if err := t.Validate(current); err != nil {
			return nil, stepError(t.Name(), "validate", err)
		}
		next, err := t.Apply(current)
		if err != nil {
			return nil, stepError(t.Name(), "apply", err)
		}
		current = next
	}
	return current, nil
}

// stepError keeps an existing TransformError as is so the innermost step is reported
func stepError(name, operation string, err error) error {
	var te *TransformError
	if errors.As(err, &te) {
		return err
	}
	return NewTransformError(name, operation, "scenario "+operation+" failed", err)
}

// Describe joins the transform descriptions for a report heading
func Describe(transforms []ScenarioTransform) string {
	parts := make([]string, 0, len(transforms))
	for _, t := range transforms {
		if t != nil {
			parts = append(parts, t.Description())
		}
	}
	return strings.Join(parts, "; ")
}

// TransformError names the transform and step that rejected a scenario
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	msg := fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransformError) Unwrap() error { return e.Err }

func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
