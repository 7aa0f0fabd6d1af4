package board

import (
	"context"
	"time"
)

// Driver is the register-level collaborator that actually touches hardware.
// Every call returns once the hardware effect is committed.
type Driver interface {
	SetXtalFrequency(ctx context.Context, hz uint32) error
	AttachClock(ctx context.Context, source, target string) error
	SetClockDivider(ctx context.Context, target string, div uint32) error
	EnableClock(ctx context.Context, gate string) error
	ClearPeripheralReset(ctx context.Context, peripheral string) error
	ConfigurePins(ctx context.Context, group string) error
	SetRunMode(ctx context.Context, mode string) error
	InitDebugConsole(ctx context.Context, instance string, baud uint32) error
	ConfigureMPU(ctx context.Context) error
	Delay(ctx context.Context, d time.Duration) error
}
