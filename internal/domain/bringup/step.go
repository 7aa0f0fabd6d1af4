package bringup

import (
	"context"
	"fmt"
	"strings"
)

// Category classifies a step for diagnostics. It never affects ordering.
type Category string

const (
	// CategoryClockTree covers oscillators, PLLs, run-mode clocking.
	CategoryClockTree Category = "clock-tree"
	// CategoryPinMux covers pin function and pad configuration.
	CategoryPinMux Category = "pin-mux"
	// CategoryPeripheralReset covers releasing peripherals from reset.
	CategoryPeripheralReset Category = "peripheral-reset"
	// CategoryClockGate covers enabling per-peripheral clock gates.
	CategoryClockGate Category = "clock-gate"
	// CategoryConsoleInit covers debug console bring-up.
	CategoryConsoleInit Category = "console-init"
	// CategoryOther covers everything else (MPU, power, delays).
	CategoryOther Category = "other"
)

// Categories lists every category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryClockTree,
		CategoryPinMux,
		CategoryPeripheralReset,
		CategoryClockGate,
		CategoryConsoleInit,
		CategoryOther,
	}
}

// ParseCategory parses a category name case-insensitively.
// Both the dashed form ("clock-tree") and the camel form ("ClockTree") are accepted.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "-")
	for _, c := range Categories() {
		if norm == string(c) || norm == strings.ReplaceAll(string(c), "-", "") {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown step category %q", s)
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Action performs one hardware configuration operation.
// It returns only once the hardware effect is committed, or fails.
type Action func(ctx context.Context) error

// Step is one atomic bring-up operation with declared dependencies.
type Step struct {
	ID          StepID
	Category    Category
	Action      Action
	DependsOn   []StepID
	Description string
}

// NewStep creates a Step. The category defaults to CategoryOther when empty.
func NewStep(id StepID, category Category, action Action, dependsOn ...StepID) Step {
	if category == "" {
		category = CategoryOther
	}
	return Step{
		ID:        id,
		Category:  category,
		Action:    action,
		DependsOn: dependsOn,
	}
}

// WithDescription returns a copy of the step with a description.
func (s Step) WithDescription(desc string) Step {
	s.Description = desc
	return s
}
