// Package boardfile reads board descriptions from YAML, TOML or INI files.
package boardfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/bringup/internal/domain/board"
)

// Format identifies a board file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatYAML, FormatTOML, FormatINI}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".ini":
		return FormatINI, nil
	}
	return "", board.NewUserError(board.ErrCodeFormatUnsupported, "unsupported board file extension").
		WithContext(path).
		WithSuggestion("Use a .yaml, .yml, .toml or .ini file")
}

// Load reads and decodes the board file at path.
func Load(path string) (*board.Description, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, board.NewUserError(board.ErrCodeFileNotFound, "board file not found").
				WithContext(path).
				WithSuggestion("Check the path, or run from the directory that holds the board file")
		}
		return nil, fmt.Errorf("read board file: %w", err)
	}

	desc, err := Parse(data, format)
	if err != nil {
		var ue *board.UserError
		if errors.As(err, &ue) && ue.Context == "" {
			return nil, ue.WithContext(path)
		}
		return nil, err
	}
	return desc, nil
}

// Parse decodes an in-memory board file.
func Parse(data []byte, format Format) (*board.Description, error) {
	var (
		desc *board.Description
		err  error
	)
	switch format {
	case FormatYAML:
		desc, err = parseYAML(data)
	case FormatTOML:
		desc, err = parseTOML(data)
	case FormatINI:
		desc, err = parseINI(data)
	default:
		return nil, board.NewUserError(board.ErrCodeFormatUnsupported, fmt.Sprintf("unsupported board format %q", format))
	}
	if err != nil {
		return nil, board.NewUserError(board.ErrCodeParse, fmt.Sprintf("cannot parse %s board file", format)).
			WithUnderlying(err).
			WithSuggestion("Check the file's syntax")
	}
	return desc, nil
}
