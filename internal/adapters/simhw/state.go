package simhw

import (
	"sort"
	"time"
)

// State is a point-in-time copy of the simulated hardware.
type State struct {
	XtalHz        uint32
	ClockSources  map[string]string
	Dividers      map[string]uint32
	EnabledGates  []string
	Released      []string
	PinGroups     []string
	RunMode       string
	Consoles      map[string]uint32
	MPUConfigured bool
	Elapsed       time.Duration
}

// Snapshot copies the current hardware state.
func (b *Board) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := State{
		XtalHz:        b.xtalHz,
		ClockSources:  make(map[string]string, len(b.sources)),
		Dividers:      make(map[string]uint32, len(b.dividers)),
		EnabledGates:  setKeys(b.gates),
		Released:      setKeys(b.released),
		PinGroups:     setKeys(b.pinGroups),
		RunMode:       b.runMode,
		Consoles:      make(map[string]uint32, len(b.consoles)),
		MPUConfigured: b.mpu,
		Elapsed:       b.elapsed,
	}
	for k, v := range b.sources {
		s.ClockSources[k] = v
	}
	for k, v := range b.dividers {
		s.Dividers[k] = v
	}
	for k, v := range b.consoles {
		s.Consoles[k] = v
	}
	return s
}

// InReset reports whether periph is still held in reset.
func (b *Board) InReset(periph string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.released[periph]
}

// ClockEnabled reports whether gate is open.
func (b *Board) ClockEnabled(gate string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gates[gate]
}

// ConsoleBaud returns the baud rate of the console on instance, if started.
func (b *Board) ConsoleBaud(instance string) (uint32, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	baud, ok := b.consoles[instance]
	return baud, ok
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, ok := range m {
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
