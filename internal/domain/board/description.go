package board

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// DefaultSchema is assumed when a description omits its schema version.
const DefaultSchema = "v1.0.0"

// Description is a declarative board bring-up recipe, as loaded from a board file.
type Description struct {
	Schema string     `yaml:"schema,omitempty"`
	Board  string     `yaml:"board"`
	Core   string     `yaml:"core,omitempty"`
	Steps  []StepSpec `yaml:"steps"`
}

// StepSpec declares one step of a Description.
type StepSpec struct {
	ID          string            `yaml:"id"`
	Category    string            `yaml:"category,omitempty"`
	Action      string            `yaml:"action"`
	Params      map[string]string `yaml:"params,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
	Description string            `yaml:"description,omitempty"`
}

// SchemaVersion returns the declared schema, or DefaultSchema when empty.
func (d *Description) SchemaVersion() string {
	if d.Schema == "" {
		return DefaultSchema
	}
	v := d.Schema
	if v[0] != 'v' {
		v = "v" + v
	}
	return v
}

// CheckSchema rejects invalid versions and any major version other than v1.
func (d *Description) CheckSchema() error {
	v := d.SchemaVersion()
	if !semver.IsValid(v) {
		return NewUserError(ErrCodeSchemaUnsupported, fmt.Sprintf("schema %q is not a semantic version", d.Schema)).
			WithSuggestion("Use a version such as `schema: v1.0.0`, or omit it")
	}
	if semver.Major(v) != "v1" {
		return NewUserError(ErrCodeSchemaUnsupported, fmt.Sprintf("schema %s is not supported", v)).
			WithSuggestion("This release reads v1 board files only")
	}
	return nil
}

// Name returns the plan name derived from the board and core.
func (d *Description) Name() string {
	if d.Core == "" {
		return d.Board
	}
	return d.Board + "/" + d.Core
}
