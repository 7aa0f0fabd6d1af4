package board

import (
	"context"

	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
)

// Built-in action kinds.
const (
	KindXtalSet       = "xtal.set"
	KindClockAttach   = "clock.attach"
	KindClockDivider  = "clock.divider"
	KindClockEnable   = "clock.enable"
	KindClockRunMode  = "clock.run-mode"
	KindResetClear    = "reset.clear"
	KindPinsConfigure = "pins.configure"
	KindConsoleInit   = "console.init"
	KindMPUConfigure  = "mpu.configure"
	KindDelay         = "delay"
)

// ActionKind turns a step's parameters into a bringup.Action bound to a Driver.
// Bind must not touch the driver; it only prepares the closure.
type ActionKind interface {
	// Name returns the identifier used in board files (e.g., "clock.attach").
	Name() string

	// Category is used when the step does not declare one.
	Category() bringup.Category

	// Params lists the parameter names the kind accepts.
	Params() []string

	// Bind validates params and returns the action.
	Bind(params Params, driver Driver) (bringup.Action, error)
}

// BindFunc is the binding half of an ActionKind.
type BindFunc func(params Params, driver Driver) (bringup.Action, error)

type actionKind struct {
	name     string
	category bringup.Category
	params   []string
	bind     BindFunc
}

// NewActionKind builds an ActionKind from its parts.
func NewActionKind(name string, category bringup.Category, params []string, bind BindFunc) ActionKind {
	return &actionKind{name: name, category: category, params: params, bind: bind}
}

func (k *actionKind) Name() string               { return k.name }
func (k *actionKind) Category() bringup.Category { return k.category }
func (k *actionKind) Params() []string           { return k.params }

func (k *actionKind) Bind(params Params, driver Driver) (bringup.Action, error) {
	return k.bind(params, driver)
}

// BuiltinKinds returns the action kinds every Compiler starts with.
func BuiltinKinds() []ActionKind {
	return []ActionKind{
		NewActionKind(KindXtalSet, bringup.CategoryClockTree, []string{"hz"},
			func(p Params, d Driver) (bringup.Action, error) {
				hz, err := p.Frequency("hz")
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) error {
					return d.SetXtalFrequency(ctx, hz)
				}, nil
			}),
		NewActionKind(KindClockAttach, bringup.CategoryClockTree, []string{"source", "target"},
			func(p Params, d Driver) (bringup.Action, error) {
				source, err := p.String("source")
				if err != nil {
					return nil, err
				}
				target, err := p.String("target")
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) error {
					return d.AttachClock(ctx, source, target)
				}, nil
			}),
		NewActionKind(KindClockDivider, bringup.CategoryClockTree, []string{"target", "div"},
			func(p Params, d Driver) (bringup.Action, error) {
				target, err := p.String("target")
				if err != nil {
					return nil, err
				}
				div, err := p.Uint32("div")
				if err != nil {
					return nil, err
				}
				if div == 0 {
					return nil, paramInvalid(p.Step(), "div", "0", errZeroDivider)
				}
				return func(ctx context.Context) error {
					return d.SetClockDivider(ctx, target, div)
				}, nil
			}),
		NewActionKind(KindClockEnable, bringup.CategoryClockGate, []string{"gate"},
			func(p Params, d Driver) (bringup.Action, error) {
				gate, err := p.String("gate")
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) error {
					return d.EnableClock(ctx, gate)
				}, nil
			}),
		NewActionKind(KindClockRunMode, bringup.CategoryClockTree, []string{"mode"},
			func(p Params, d Driver) (bringup.Action, error) {
				mode, err := p.String("mode")
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) error {
					return d.SetRunMode(ctx, mode)
				}, nil
			}),
		NewActionKind(KindResetClear, bringup.CategoryPeripheralReset, []string{"peripheral"},
			func(p Params, d Driver) (bringup.Action, error) {
				periph, err := p.String("peripheral")
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) error {
					return d.ClearPeripheralReset(ctx, periph)
				}, nil
			}),
		NewActionKind(KindPinsConfigure, bringup.CategoryPinMux, []string{"group"},
			func(p Params, d Driver) (bringup.Action, error) {
				group, err := p.String("group")
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) error {
					return d.ConfigurePins(ctx, group)
				}, nil
			}),
		NewActionKind(KindConsoleInit, bringup.CategoryConsoleInit, []string{"instance", "baud"},
			func(p Params, d Driver) (bringup.Action, error) {
				instance, err := p.String("instance")
				if err != nil {
					return nil, err
				}
				baud, err := p.Uint32("baud")
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) error {
					return d.InitDebugConsole(ctx, instance, baud)
				}, nil
			}),
		NewActionKind(KindMPUConfigure, bringup.CategoryOther, nil,
			func(_ Params, d Driver) (bringup.Action, error) {
				return func(ctx context.Context) error {
					return d.ConfigureMPU(ctx)
				}, nil
			}),
		NewActionKind(KindDelay, bringup.CategoryOther, []string{"duration"},
			func(p Params, d Driver) (bringup.Action, error) {
				dur, err := p.Duration("duration")
				if err != nil {
					return nil, err
				}
				return func(ctx context.Context) error {
					return d.Delay(ctx, dur)
				}, nil
			}),
	}
}
