package board

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Params gives typed access to a step's string parameters.
// Accessors return *UserError values that name the step.
type Params struct {
	step   string
	values map[string]string
}

// NewParams wraps the parameters of the step with the given ID.
func NewParams(step string, values map[string]string) Params {
	return Params{step: step, values: values}
}

// Step returns the ID of the step the parameters belong to.
func (p Params) Step() string {
	return p.step
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a required, non-blank parameter.
func (p Params) String(key string) (string, error) {
	v, ok := p.values[key]
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", paramMissing(p.step, key)
	}
	return v, nil
}

// Uint32 returns a required unsigned integer parameter.
// Decimal, 0x hex and 0b binary forms are accepted.
func (p Params) Uint32(key string) (uint32, error) {
	raw, err := p.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(strings.ReplaceAll(raw, "_", ""), 0, 32)
	if err != nil {
		return 0, paramInvalid(p.step, key, raw, err)
	}
	return uint32(n), nil
}

// Frequency returns a required frequency in hertz.
// Plain integers are hertz; "Hz", "kHz" and "MHz" suffixes are accepted.
func (p Params) Frequency(key string) (uint32, error) {
	raw, err := p.String(key)
	if err != nil {
		return 0, err
	}

	num, mult := raw, 1.0
	lower := strings.ToLower(raw)
	switch {
	case strings.HasSuffix(lower, "mhz"):
		num, mult = raw[:len(raw)-3], 1e6
	case strings.HasSuffix(lower, "khz"):
		num, mult = raw[:len(raw)-3], 1e3
	case strings.HasSuffix(lower, "hz"):
		num = raw[:len(raw)-2]
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, paramInvalid(p.step, key, raw, err)
	}
	hz := f * mult
	if hz <= 0 || hz > math.MaxUint32 || hz != math.Trunc(hz) {
		return 0, paramInvalid(p.step, key, raw, fmt.Errorf("frequency out of range"))
	}
	return uint32(hz), nil
}

// Duration returns a required duration such as "50us" or "2ms".
func (p Params) Duration(key string) (time.Duration, error) {
	raw, err := p.String(key)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, paramInvalid(p.step, key, raw, err)
	}
	if d < 0 {
		return 0, paramInvalid(p.step, key, raw, fmt.Errorf("duration must not be negative"))
	}
	return d, nil
}
