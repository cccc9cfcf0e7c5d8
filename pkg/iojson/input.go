package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Input decodes a T from the file named by its --file flag, or from stdin
// when the flag is empty. Files ending in .yaml or .yml are decoded as YAML,
// other files as JSON. Stdin is sniffed.
type Input[T any] struct {
	path string
}

// Flag returns the --file flag bound to this input.
func (in *Input[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a JSON or YAML file (reads stdin if not provided)",
		Destination: &in.path,
		TakesFile:   true,
	}
}

// Read decodes from the file, or from os.Stdin.
func (in *Input[T]) Read() (T, error) {
	if in.path == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		var zero T
		return zero, fmt.Errorf("no input provided (stdin is a terminal); use -f or pipe input")
	}
	return in.ReadFrom(os.Stdin)
}

// ReadFrom decodes from the file, or from stdin when no file is set.
func (in *Input[T]) ReadFrom(stdin io.Reader) (T, error) {
	var out T

	var (
		data []byte
		err  error
	)
	if in.path != "" {
		data, err = os.ReadFile(in.path)
		if err != nil {
			return out, fmt.Errorf("read input: %w", err)
		}
	} else {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return out, fmt.Errorf("read stdin: %w", err)
		}
	}

	if in.isYAML(data) {
		if err := yaml.Unmarshal(data, &out); err != nil {
			return out, fmt.Errorf("decode YAML: %w", err)
		}
		return out, nil
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode JSON: %w", err)
	}
	return out, nil
}

func (in *Input[T]) isYAML(data []byte) bool {
	if in.path == "" {
		return !looksLikeJSON(data)
	}
	switch strings.ToLower(filepath.Ext(in.path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
