package boardfile

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/bringup/internal/domain/board"
)

const (
	iniBoardSection = "board"
	iniStepPrefix   = "step "
)

// Keys of a step section that are not action parameters.
var iniStepKeys = map[string]bool{
	"category":    true,
	"action":      true,
	"depends_on":  true,
	"description": true,
}

// parseINI reads the INI layout:
//
//	[board]
//	board = evkmimxrt1170
//
//	[step "clock:xtal"]
//	action = xtal.set
//	hz     = 24MHz
func parseINI(data []byte) (*board.Description, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{KeyValueDelimiters: "="}, data)
	if err != nil {
		return nil, err
	}

	desc := &board.Description{}
	if sec, err := cfg.GetSection(iniBoardSection); err == nil {
		desc.Schema = sec.Key("schema").String()
		desc.Board = sec.Key("board").String()
		desc.Core = sec.Key("core").String()
	}

	for _, sec := range cfg.Sections() {
		name := sec.Name()
		if !strings.HasPrefix(name, iniStepPrefix) {
			continue
		}
		id, err := unquoteSection(strings.TrimSpace(strings.TrimPrefix(name, iniStepPrefix)))
		if err != nil {
			return nil, fmt.Errorf("section [%s]: %w", name, err)
		}

		spec := board.StepSpec{
			ID:          id,
			Category:    sec.Key("category").String(),
			Action:      sec.Key("action").String(),
			DependsOn:   splitList(sec.Key("depends_on").String()),
			Description: sec.Key("description").String(),
		}
		for _, key := range sec.Keys() {
			if iniStepKeys[key.Name()] {
				continue
			}
			if spec.Params == nil {
				spec.Params = make(map[string]string)
			}
			spec.Params[key.Name()] = key.String()
		}
		desc.Steps = append(desc.Steps, spec)
	}
	return desc, nil
}

func unquoteSection(s string) (string, error) {
	if strings.HasPrefix(s, `"`) {
		return strconv.Unquote(s)
	}
	return s, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
