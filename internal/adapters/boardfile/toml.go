package boardfile

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/felixgeelhaar/bringup/internal/domain/board"
)

// tomlDescription mirrors board.Description. Params are decoded loosely so
// that `baud = 115200` and `baud = "115200"` mean the same thing.
type tomlDescription struct {
	Schema string     `toml:"schema"`
	Board  string     `toml:"board"`
	Core   string     `toml:"core"`
	Steps  []tomlStep `toml:"steps"`
}

type tomlStep struct {
	ID          string                 `toml:"id"`
	Category    string                 `toml:"category"`
	Action      string                 `toml:"action"`
	Params      map[string]interface{} `toml:"params"`
	DependsOn   []string               `toml:"depends_on"`
	Description string                 `toml:"description"`
}

func parseTOML(data []byte) (*board.Description, error) {
	var raw tomlDescription
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	desc := &board.Description{
		Schema: raw.Schema,
		Board:  raw.Board,
		Core:   raw.Core,
		Steps:  make([]board.StepSpec, 0, len(raw.Steps)),
	}
	for _, s := range raw.Steps {
		spec := board.StepSpec{
			ID:          s.ID,
			Category:    s.Category,
			Action:      s.Action,
			DependsOn:   s.DependsOn,
			Description: s.Description,
		}
		if len(s.Params) > 0 {
			spec.Params = make(map[string]string, len(s.Params))
			for k, v := range s.Params {
				spec.Params[k] = fmt.Sprint(v)
			}
		}
		desc.Steps = append(desc.Steps, spec)
	}
	return desc, nil
}
