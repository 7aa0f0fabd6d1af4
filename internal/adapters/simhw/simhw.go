// Package simhw provides an in-memory board.Driver.
//
// The simulated SoC enforces the ordering rules real silicon imposes (a
// divider needs its clock attached, a gate needs its peripheral out of
// reset, the debug console needs a clocked UART and run mode), so a
// mis-ordered bring-up plan fails at the offending step instead of silently
// passing. Faults can be injected per call to rehearse failures.
package simhw

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/bringup/internal/domain/board"
	"github.com/felixgeelhaar/bringup/internal/ports"
)

// ErrPrecondition is returned when a call arrives before the hardware state it needs.
var ErrPrecondition = errors.New("hardware precondition not met")

// ErrInvalidArgument is returned for arguments real hardware would reject.
var ErrInvalidArgument = errors.New("invalid hardware argument")

// Call names a Driver method.
type Call string

// Driver calls.
const (
	CallSetXtalFrequency     Call = "SetXtalFrequency"
	CallAttachClock          Call = "AttachClock"
	CallSetClockDivider      Call = "SetClockDivider"
	CallEnableClock          Call = "EnableClock"
	CallClearPeripheralReset Call = "ClearPeripheralReset"
	CallConfigurePins        Call = "ConfigurePins"
	CallSetRunMode           Call = "SetRunMode"
	CallInitDebugConsole     Call = "InitDebugConsole"
	CallConfigureMPU         Call = "ConfigureMPU"
	CallDelay                Call = "Delay"
)

// Calls lists every Driver call.
func Calls() []Call {
	return []Call{
		CallSetXtalFrequency, CallAttachClock, CallSetClockDivider, CallEnableClock,
		CallClearPeripheralReset, CallConfigurePins, CallSetRunMode,
		CallInitDebugConsole, CallConfigureMPU, CallDelay,
	}
}

// ParseCall parses a call name case-insensitively.
func ParseCall(s string) (Call, error) {
	for _, c := range Calls() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown driver call %q", s)
}

// Entry is one journaled driver call.
type Entry struct {
	Call   Call
	Target string
	Args   string
	Err    error
}

// String renders the entry as Call(target, args).
func (e Entry) String() string {
	parts := make([]string, 0, 2)
	if e.Target != "" {
		parts = append(parts, e.Target)
	}
	if e.Args != "" {
		parts = append(parts, e.Args)
	}
	return fmt.Sprintf("%s(%s)", e.Call, strings.Join(parts, ", "))
}

type fault struct {
	call      Call
	target    string
	err       error
	remaining int // <0 means every time
}

// Board is a simulated SoC. It is safe for concurrent use.
type Board struct {
	mu sync.Mutex

	xtalHz     uint32
	sources    map[string]string // clock target -> source
	dividers   map[string]uint32
	gates      map[string]bool
	released   map[string]bool // peripherals out of reset
	pinGroups  map[string]bool
	runMode    string
	consoles   map[string]uint32
	mpu        bool
	elapsed    time.Duration
	faults     []*fault
	journal    []Entry
	logger     ports.Logger
	realDelays bool
}

// Option configures a Board.
type Option func(*Board)

// WithLogger logs every call at debug level.
func WithLogger(logger ports.Logger) Option {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithRealDelays makes Delay actually sleep instead of only advancing the simulated clock.
func WithRealDelays(enabled bool) Option {
	return func(b *Board) {
		b.realDelays = enabled
	}
}

// New creates a board in its power-on state: no clocks, every peripheral in reset.
func New(opts ...Option) *Board {
	b := &Board{}
	b.powerOn()
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) powerOn() {
	b.xtalHz = 0
	b.sources = make(map[string]string)
	b.dividers = make(map[string]uint32)
	b.gates = make(map[string]bool)
	b.released = make(map[string]bool)
	b.pinGroups = make(map[string]bool)
	b.runMode = ""
	b.consoles = make(map[string]uint32)
	b.mpu = false
	b.elapsed = 0
}

// SetLogger replaces the call logger. A nil logger disables call logging.
func (b *Board) SetLogger(logger ports.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = logger
}

// PowerCycle returns the hardware to its power-on state.
// The journal and injected faults are kept.
func (b *Board) PowerCycle() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.powerOn()
}

// FailOn makes every matching call fail with err.
// An empty target matches any target.
func (b *Board) FailOn(call Call, target string, err error) {
	b.FailTimes(call, target, err, -1)
}

// FailTimes makes the next n matching calls fail with err.
func (b *Board) FailTimes(call Call, target string, err error, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults = append(b.faults, &fault{call: call, target: target, err: err, remaining: n})
}

// ClearFaults removes all injected faults.
func (b *Board) ClearFaults() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults = nil
}

// Journal returns every call made so far, in order.
func (b *Board) Journal() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.journal))
	copy(out, b.journal)
	return out
}

// SetXtalFrequency records the external crystal frequency.
func (b *Board) SetXtalFrequency(ctx context.Context, hz uint32) error {
	return b.do(ctx, CallSetXtalFrequency, "", fmt.Sprintf("%d", hz), func() error {
		if hz == 0 {
			return fmt.Errorf("%w: crystal frequency must be positive", ErrInvalidArgument)
		}
		b.xtalHz = hz
		return nil
	})
}

// AttachClock routes source to target.
func (b *Board) AttachClock(ctx context.Context, source, target string) error {
	return b.do(ctx, CallAttachClock, target, source, func() error {
		if source == "" {
			return fmt.Errorf("%w: clock source is empty", ErrInvalidArgument)
		}
		b.sources[target] = source
		return nil
	})
}

// SetClockDivider sets target's divider. The target must be attached.
func (b *Board) SetClockDivider(ctx context.Context, target string, div uint32) error {
	return b.do(ctx, CallSetClockDivider, target, fmt.Sprintf("%d", div), func() error {
		if div == 0 {
			return fmt.Errorf("%w: divider must be at least 1", ErrInvalidArgument)
		}
		if _, ok := b.sources[target]; !ok {
			return fmt.Errorf("%w: %s clock has no source attached", ErrPrecondition, target)
		}
		b.dividers[target] = div
		return nil
	})
}

// EnableClock opens gate. The peripheral behind it must be out of reset.
func (b *Board) EnableClock(ctx context.Context, gate string) error {
	return b.do(ctx, CallEnableClock, gate, "", func() error {
		if !b.released[gate] {
			return fmt.Errorf("%w: %s is still held in reset", ErrPrecondition, gate)
		}
		b.gates[gate] = true
		return nil
	})
}

// ClearPeripheralReset releases periph from reset.
func (b *Board) ClearPeripheralReset(ctx context.Context, periph string) error {
	return b.do(ctx, CallClearPeripheralReset, periph, "", func() error {
		b.released[periph] = true
		return nil
	})
}

// ConfigurePins applies a pin-mux group.
func (b *Board) ConfigurePins(ctx context.Context, group string) error {
	return b.do(ctx, CallConfigurePins, group, "", func() error {
		b.pinGroups[group] = true
		return nil
	})
}

// SetRunMode enters a run mode. The crystal frequency must be set.
func (b *Board) SetRunMode(ctx context.Context, mode string) error {
	return b.do(ctx, CallSetRunMode, mode, "", func() error {
		if b.xtalHz == 0 {
			return fmt.Errorf("%w: crystal frequency not set", ErrPrecondition)
		}
		b.runMode = mode
		return nil
	})
}

// InitDebugConsole starts the debug console on instance. The instance's
// clock must be attached and enabled, and a run mode entered.
func (b *Board) InitDebugConsole(ctx context.Context, instance string, baud uint32) error {
	return b.do(ctx, CallInitDebugConsole, instance, fmt.Sprintf("%d", baud), func() error {
		switch {
		case baud == 0:
			return fmt.Errorf("%w: baud rate must be positive", ErrInvalidArgument)
		case b.sources[instance] == "":
			return fmt.Errorf("%w: %s clock has no source attached", ErrPrecondition, instance)
		case !b.gates[instance]:
			return fmt.Errorf("%w: %s clock gate is closed", ErrPrecondition, instance)
		case b.runMode == "":
			return fmt.Errorf("%w: core is not in a run mode", ErrPrecondition)
		}
		b.consoles[instance] = baud
		return nil
	})
}

// ConfigureMPU programs the memory protection unit.
func (b *Board) ConfigureMPU(ctx context.Context) error {
	return b.do(ctx, CallConfigureMPU, "", "", func() error {
		b.mpu = true
		return nil
	})
}

// Delay advances the simulated clock by d.
func (b *Board) Delay(ctx context.Context, d time.Duration) error {
	err := b.do(ctx, CallDelay, "", d.String(), func() error {
		b.elapsed += d
		return nil
	})
	if err == nil && b.realDelays {
		time.Sleep(d)
	}
	return err
}

// do journals the call, applies any injected fault, then runs apply under the lock.
func (b *Board) do(ctx context.Context, call Call, target, args string, apply func() error) error {
	b.mu.Lock()
	err := b.injected(call, target)
	if err == nil {
		err = apply()
	}
	b.journal = append(b.journal, Entry{Call: call, Target: target, Args: args, Err: err})
	logger := b.logger
	b.mu.Unlock()

	if logger != nil {
		fields := []ports.Field{ports.F("call", string(call))}
		if target != "" {
			fields = append(fields, ports.F("target", target))
		}
		if err != nil {
			fields = append(fields, ports.F("error", err.Error()))
		}
		logger.Debug(ctx, "hardware call", fields...)
	}
	return err
}

func (b *Board) injected(call Call, target string) error {
	for _, f := range b.faults {
		if f.call != call || (f.target != "" && f.target != target) || f.remaining == 0 {
			continue
		}
		if f.remaining > 0 {
			f.remaining--
		}
		return f.err
	}
	return nil
}

var _ board.Driver = (*Board)(nil)
