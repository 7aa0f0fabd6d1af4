// Package board turns declarative board descriptions into bring-up plans.
// A Description names steps by action kind; the Compiler binds each kind to
// Driver calls and produces a bringup.Plan ready for the orchestrator.
package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
)

// ErrKindRegistered is returned when an action kind name is registered twice.
var ErrKindRegistered = errors.New("action kind already registered")

var errZeroDivider = errors.New("divider must be at least 1")

// Compiler binds board descriptions to a Driver.
type Compiler struct {
	kinds map[string]ActionKind
}

// NewCompiler creates a Compiler with the built-in action kinds.
func NewCompiler() *Compiler {
	c := &Compiler{kinds: make(map[string]ActionKind)}
	for _, kind := range BuiltinKinds() {
		c.kinds[kind.Name()] = kind
	}
	return c
}

// Register adds an action kind. Names are unique.
func (c *Compiler) Register(kind ActionKind) error {
	if _, exists := c.kinds[kind.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrKindRegistered, kind.Name())
	}
	c.kinds[kind.Name()] = kind
	return nil
}

// Kinds returns the registered kind names in sorted order.
func (c *Compiler) Kinds() []string {
	names := make([]string, 0, len(c.kinds))
	for name := range c.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Kind looks up a registered action kind by name.
func (c *Compiler) Kind(name string) (ActionKind, bool) {
	kind, ok := c.kinds[name]
	return kind, ok
}

// Compile builds a Plan from desc whose actions call driver.
// It checks the description's shape only: dependency resolution and cycle
// detection belong to bringup.Validate. No action is run.
func (c *Compiler) Compile(desc *Description, driver Driver) (*bringup.Plan, error) {
	if desc == nil {
		return nil, NewUserError(ErrCodeDescriptionInvalid, "board description is empty")
	}
	if err := desc.CheckSchema(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(desc.Board) == "" {
		return nil, NewUserError(ErrCodeDescriptionInvalid, "board name is missing").
			WithSuggestion("Set `board:` to the board's name, e.g. `board: evkmimxrt1170`")
	}

	plan := bringup.NewPlan(desc.Name())
	for i, spec := range desc.Steps {
		step, err := c.compileStep(spec, driver)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := plan.Add(step); err != nil {
			return nil, NewUserError(ErrCodeStepInvalid, "step cannot be added to the plan").
				WithContext(spec.ID).
				WithUnderlying(err)
		}
	}
	return plan, nil
}

func (c *Compiler) compileStep(spec StepSpec, driver Driver) (bringup.Step, error) {
	id, err := bringup.NewStepID(spec.ID)
	if err != nil {
		return bringup.Step{}, NewUserError(ErrCodeStepInvalid, fmt.Sprintf("invalid step id %q", spec.ID)).
			WithUnderlying(err).
			WithSuggestion("Use colon-separated segments such as `clock:main-pll`")
	}

	kind, ok := c.kinds[spec.Action]
	if !ok {
		return bringup.Step{}, NewUserError(ErrCodeUnknownAction, fmt.Sprintf("unknown action %q", spec.Action)).
			WithContext(id.String()).
			WithSuggestion("Known actions: " + strings.Join(c.Kinds(), ", "))
	}

	category := kind.Category()
	if spec.Category != "" {
		category, err = bringup.ParseCategory(spec.Category)
		if err != nil {
			return bringup.Step{}, NewUserError(ErrCodeCategoryInvalid, fmt.Sprintf("invalid category %q", spec.Category)).
				WithContext(id.String()).
				WithSuggestion("Use one of: " + categoryList())
		}
	}

	if err := checkParamNames(id.String(), kind, spec.Params); err != nil {
		return bringup.Step{}, err
	}

	deps, err := bringup.IDs(spec.DependsOn...)
	if err != nil {
		return bringup.Step{}, NewUserError(ErrCodeStepInvalid, "invalid dependency id").
			WithContext(id.String()).
			WithUnderlying(err)
	}

	action, err := kind.Bind(NewParams(id.String(), spec.Params), driver)
	if err != nil {
		return bringup.Step{}, err
	}

	return bringup.NewStep(id, category, action, deps...).WithDescription(spec.Description), nil
}

func checkParamNames(step string, kind ActionKind, params map[string]string) error {
	allowed := make(map[string]bool, len(kind.Params()))
	for _, name := range kind.Params() {
		allowed[name] = true
	}
	for _, key := range NewParams(step, params).Keys() {
		if !allowed[key] {
			suggestion := fmt.Sprintf("%s takes no parameters", kind.Name())
			if len(kind.Params()) > 0 {
				suggestion = fmt.Sprintf("%s accepts: %s", kind.Name(), strings.Join(kind.Params(), ", "))
			}
			return NewUserError(ErrCodeParamInvalid, fmt.Sprintf("unknown parameter %q", key)).
				WithContext(step).
				WithSuggestion(suggestion)
		}
	}
	return nil
}

func categoryList() string {
	names := make([]string, 0, len(bringup.Categories()))
	for _, c := range bringup.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
