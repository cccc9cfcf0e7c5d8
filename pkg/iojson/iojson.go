// Package iojson reads structured command input and writes indented JSON
// command output.
package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Write encodes obj as indented JSON followed by a newline.
func Write(w io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	bits = append(bits, '\n')
	_, err = w.Write(bits)
	return err
}

// looksLikeJSON reports whether data starts with an object or array.
func looksLikeJSON(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && (data[0] == '{' || data[0] == '[')
}
