package board

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
)

// recordingDriver records each call as "Method(args)".
type recordingDriver struct {
	calls []string
	fail  map[string]error
}

func (d *recordingDriver) record(call string) error {
	d.calls = append(d.calls, call)
	return d.fail[call]
}

func (d *recordingDriver) SetXtalFrequency(_ context.Context, hz uint32) error {
	return d.record(fmt.Sprintf("SetXtalFrequency(%d)", hz))
}

func (d *recordingDriver) AttachClock(_ context.Context, source, target string) error {
	return d.record(fmt.Sprintf("AttachClock(%s,%s)", source, target))
}

func (d *recordingDriver) SetClockDivider(_ context.Context, target string, div uint32) error {
	return d.record(fmt.Sprintf("SetClockDivider(%s,%d)", target, div))
}

func (d *recordingDriver) EnableClock(_ context.Context, gate string) error {
	return d.record(fmt.Sprintf("EnableClock(%s)", gate))
}

func (d *recordingDriver) ClearPeripheralReset(_ context.Context, periph string) error {
	return d.record(fmt.Sprintf("ClearPeripheralReset(%s)", periph))
}

func (d *recordingDriver) ConfigurePins(_ context.Context, group string) error {
	return d.record(fmt.Sprintf("ConfigurePins(%s)", group))
}

func (d *recordingDriver) SetRunMode(_ context.Context, mode string) error {
	return d.record(fmt.Sprintf("SetRunMode(%s)", mode))
}

func (d *recordingDriver) InitDebugConsole(_ context.Context, instance string, baud uint32) error {
	return d.record(fmt.Sprintf("InitDebugConsole(%s,%d)", instance, baud))
}

func (d *recordingDriver) ConfigureMPU(_ context.Context) error {
	return d.record("ConfigureMPU()")
}

func (d *recordingDriver) Delay(_ context.Context, dur time.Duration) error {
	return d.record(fmt.Sprintf("Delay(%s)", dur))
}

func evkDescription() *Description {
	return &Description{
		Board: "evkmimxrt1170",
		Core:  "cm7",
		Steps: []StepSpec{
			{ID: "console:lpuart1", Action: KindConsoleInit,
				Params:    map[string]string{"instance": "lpuart1", "baud": "115200"},
				DependsOn: []string{"gate:lpuart1", "clock:run"}},
			{ID: "gate:lpuart1", Action: KindClockEnable,
				Params:    map[string]string{"gate": "lpuart1"},
				DependsOn: []string{"reset:lpuart1", "clock:lpuart1"}},
			{ID: "reset:lpuart1", Action: KindResetClear,
				Params: map[string]string{"peripheral": "lpuart1"}},
			{ID: "clock:lpuart1", Action: KindClockAttach,
				Params:    map[string]string{"source": "osc24m", "target": "lpuart1"},
				DependsOn: []string{"clock:xtal"}},
			{ID: "clock:run", Action: KindClockRunMode,
				Params:    map[string]string{"mode": "run"},
				DependsOn: []string{"clock:xtal"}},
			{ID: "clock:xtal", Action: KindXtalSet,
				Params:      map[string]string{"hz": "24MHz"},
				Description: "24 MHz crystal"},
			{ID: "mpu", Action: KindMPUConfigure},
		},
	}
}

func TestCompiler_CompileBuildsPlan(t *testing.T) {
	driver := &recordingDriver{}
	plan, err := NewCompiler().Compile(evkDescription(), driver)
	require.NoError(t, err)

	assert.Equal(t, "evkmimxrt1170/cm7", plan.Name())
	assert.Equal(t, 7, plan.Len())
	assert.Empty(t, driver.calls, "compile must not run actions")

	step, ok := plan.Get(bringup.MustNewStepID("clock:xtal"))
	require.True(t, ok)
	assert.Equal(t, bringup.CategoryClockTree, step.Category)
	assert.Equal(t, "24 MHz crystal", step.Description)

	step, ok = plan.Get(bringup.MustNewStepID("gate:lpuart1"))
	require.True(t, ok)
	assert.Equal(t, bringup.CategoryClockGate, step.Category)
	assert.Len(t, step.DependsOn, 2)
}

func TestCompiler_CompiledPlanRunsInDependencyOrder(t *testing.T) {
	driver := &recordingDriver{}
	plan, err := NewCompiler().Compile(evkDescription(), driver)
	require.NoError(t, err)

	report, err := bringup.NewOrchestrator().Execute(context.Background(), plan)
	require.NoError(t, err)
	require.True(t, report.Succeeded())

	assert.Equal(t, []string{
		"ClearPeripheralReset(lpuart1)",
		"SetXtalFrequency(24000000)",
		"AttachClock(osc24m,lpuart1)",
		"EnableClock(lpuart1)",
		"SetRunMode(run)",
		"InitDebugConsole(lpuart1,115200)",
		"ConfigureMPU()",
	}, driver.calls)
}

func TestCompiler_DriverErrorBecomesBringupError(t *testing.T) {
	driverErr := errors.New("pll did not lock")
	driver := &recordingDriver{fail: map[string]error{"SetRunMode(run)": driverErr}}
	plan, err := NewCompiler().Compile(evkDescription(), driver)
	require.NoError(t, err)

	_, err = bringup.NewOrchestrator().Execute(context.Background(), plan)

	var be *bringup.BringupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "clock:run", be.StepID.String())
	assert.ErrorIs(t, err, driverErr)
}

func TestCompiler_CategoryOverride(t *testing.T) {
	desc := &Description{Board: "b", Steps: []StepSpec{
		{ID: "wait", Action: KindDelay, Category: "Clock_Tree", Params: map[string]string{"duration": "50us"}},
	}}
	plan, err := NewCompiler().Compile(desc, &recordingDriver{})
	require.NoError(t, err)

	step, _ := plan.Get(bringup.MustNewStepID("wait"))
	assert.Equal(t, bringup.CategoryClockTree, step.Category)
}

func TestCompiler_DanglingAndCyclesAreLeftToValidate(t *testing.T) {
	desc := &Description{Board: "b", Steps: []StepSpec{
		{ID: "a", Action: KindMPUConfigure, DependsOn: []string{"b"}},
		{ID: "b", Action: KindMPUConfigure, DependsOn: []string{"a"}},
		{ID: "c", Action: KindMPUConfigure, DependsOn: []string{"missing"}},
	}}
	plan, err := NewCompiler().Compile(desc, &recordingDriver{})
	require.NoError(t, err)

	err = bringup.Validate(plan)
	require.Error(t, err)
	assert.ErrorIs(t, err, bringup.ErrDanglingDependency)
}

func TestCompiler_Errors(t *testing.T) {
	tests := []struct {
		name string
		desc *Description
		code string
	}{
		{
			name: "nil description",
			desc: nil,
			code: ErrCodeDescriptionInvalid,
		},
		{
			name: "missing board",
			desc: &Description{Steps: []StepSpec{{ID: "a", Action: KindMPUConfigure}}},
			code: ErrCodeDescriptionInvalid,
		},
		{
			name: "unsupported schema",
			desc: &Description{Schema: "v2.0.0", Board: "b"},
			code: ErrCodeSchemaUnsupported,
		},
		{
			name: "invalid schema",
			desc: &Description{Schema: "latest", Board: "b"},
			code: ErrCodeSchemaUnsupported,
		},
		{
			name: "unknown action",
			desc: &Description{Board: "b", Steps: []StepSpec{{ID: "a", Action: "pmic.set"}}},
			code: ErrCodeUnknownAction,
		},
		{
			name: "invalid id",
			desc: &Description{Board: "b", Steps: []StepSpec{{ID: "bad id", Action: KindMPUConfigure}}},
			code: ErrCodeStepInvalid,
		},
		{
			name: "invalid dependency id",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindMPUConfigure, DependsOn: []string{"::"}},
			}},
			code: ErrCodeStepInvalid,
		},
		{
			name: "duplicate id",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindMPUConfigure},
				{ID: "a", Action: KindMPUConfigure},
			}},
			code: ErrCodeStepInvalid,
		},
		{
			name: "invalid category",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindMPUConfigure, Category: "power"},
			}},
			code: ErrCodeCategoryInvalid,
		},
		{
			name: "missing param",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindClockAttach, Params: map[string]string{"source": "osc24m"}},
			}},
			code: ErrCodeParamMissing,
		},
		{
			name: "blank param",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindClockEnable, Params: map[string]string{"gate": "  "}},
			}},
			code: ErrCodeParamMissing,
		},
		{
			name: "unknown param",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindClockEnable, Params: map[string]string{"gate": "gpio1", "gaet": "x"}},
			}},
			code: ErrCodeParamInvalid,
		},
		{
			name: "bad baud",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindConsoleInit, Params: map[string]string{"instance": "lpuart1", "baud": "fast"}},
			}},
			code: ErrCodeParamInvalid,
		},
		{
			name: "zero divider",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindClockDivider, Params: map[string]string{"target": "lpuart1", "div": "0"}},
			}},
			code: ErrCodeParamInvalid,
		},
		{
			name: "negative delay",
			desc: &Description{Board: "b", Steps: []StepSpec{
				{ID: "a", Action: KindDelay, Params: map[string]string{"duration": "-1ms"}},
			}},
			code: ErrCodeParamInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCompiler().Compile(tt.desc, &recordingDriver{})
			require.Error(t, err)

			var ue *UserError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.code, ue.Code)
			assert.ErrorIs(t, err, NewUserError(tt.code, ""))
		})
	}
}

func TestCompiler_Register(t *testing.T) {
	c := NewCompiler()
	var powered []string
	kind := NewActionKind("pmic.enable", bringup.CategoryOther, []string{"rail"},
		func(p Params, _ Driver) (bringup.Action, error) {
			rail, err := p.String("rail")
			if err != nil {
				return nil, err
			}
			return func(context.Context) error {
				powered = append(powered, rail)
				return nil
			}, nil
		})

	require.NoError(t, c.Register(kind))
	assert.ErrorIs(t, c.Register(kind), ErrKindRegistered)
	assert.Contains(t, c.Kinds(), "pmic.enable")

	desc := &Description{Board: "b", Steps: []StepSpec{
		{ID: "power:vdd-soc", Action: "pmic.enable", Params: map[string]string{"rail": "vdd_soc"}},
	}}
	plan, err := c.Compile(desc, &recordingDriver{})
	require.NoError(t, err)

	_, err = bringup.NewOrchestrator().Execute(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []string{"vdd_soc"}, powered)
}

func TestCompiler_KindsSorted(t *testing.T) {
	kinds := NewCompiler().Kinds()
	assert.Len(t, kinds, 10)
	assert.IsIncreasing(t, kinds)
}

func TestCompiler_Kind(t *testing.T) {
	kind, ok := NewCompiler().Kind(KindClockDivider)
	require.True(t, ok)
	assert.Equal(t, bringup.CategoryClockTree, kind.Category())
	assert.Equal(t, []string{"target", "div"}, kind.Params())

	_, ok = NewCompiler().Kind("warp.drive")
	assert.False(t, ok)
}

func TestDescription_SchemaVersion(t *testing.T) {
	assert.Equal(t, DefaultSchema, (&Description{}).SchemaVersion())
	assert.Equal(t, "v1.2.0", (&Description{Schema: "1.2.0"}).SchemaVersion())
	assert.NoError(t, (&Description{Schema: "v1.4"}).CheckSchema())
	assert.NoError(t, (&Description{Schema: "1.0.0"}).CheckSchema())
}

func TestDescription_Name(t *testing.T) {
	assert.Equal(t, "evk", (&Description{Board: "evk"}).Name())
	assert.Equal(t, "evk/cm4", (&Description{Board: "evk", Core: "cm4"}).Name())
}

func TestParams_Frequency(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint32
		wantErr bool
	}{
		{raw: "24000000", want: 24000000},
		{raw: "24MHz", want: 24000000},
		{raw: "32.768kHz", want: 32768},
		{raw: "600 MHz", want: 600000000},
		{raw: "100Hz", want: 100},
		{raw: "1.5Hz", wantErr: true},
		{raw: "0", wantErr: true},
		{raw: "10GHz", wantErr: true},
		{raw: "fast", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NewParams("clock:xtal", map[string]string{"hz": tt.raw}).Frequency("hz")
			if tt.wantErr {
				assert.ErrorIs(t, err, NewUserError(ErrCodeParamInvalid, ""))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_Uint32(t *testing.T) {
	p := NewParams("s", map[string]string{"dec": "115_200", "hex": "0x10", "neg": "-1"})

	v, err := p.Uint32("dec")
	require.NoError(t, err)
	assert.Equal(t, uint32(115200), v)

	v, err = p.Uint32("hex")
	require.NoError(t, err)
	assert.Equal(t, uint32(16), v)

	_, err = p.Uint32("neg")
	assert.ErrorIs(t, err, NewUserError(ErrCodeParamInvalid, ""))

	_, err = p.Uint32("absent")
	assert.ErrorIs(t, err, NewUserError(ErrCodeParamMissing, ""))
}

func TestUserError_Format(t *testing.T) {
	err := NewUserError(ErrCodeParamMissing, `required parameter "gate" is missing`).
		WithContext("gate:gpio1").
		WithSuggestion("Add `gate` to the step's params").
		WithUnderlying(errors.New("boom"))

	assert.Equal(t, `required parameter "gate" is missing (gate:gpio1): boom`, err.Error())

	out := err.Format()
	assert.Contains(t, out, "Error [PARAM_MISSING]")
	assert.Contains(t, out, "Context: gate:gpio1")
	assert.Contains(t, out, "Cause: boom")
	assert.Contains(t, out, "Suggestion: Add `gate`")
}
