package boardfile

import (
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/bringup/internal/domain/board"
)

func parseYAML(data []byte) (*board.Description, error) {
	var desc board.Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// MarshalYAML encodes a description as YAML.
func MarshalYAML(desc *board.Description) ([]byte, error) {
	return yaml.Marshal(desc)
}
