package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/styles"
)

// FieldError is the printable form of one validation failure.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// fieldErrors flattens criterio field errors. Any other error becomes a
// single entry without a field.
func fieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var fe criterio.FieldErrors
	if !errors.As(err, &fe) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(fe))
	for _, e := range fe {
		out = append(out, FieldError{Field: e.Field, Message: e.Err.Error()})
	}
	return out
}

func printFieldErrors(w io.Writer, errs []FieldError) {
	for _, e := range errs {
		icon := styles.CategoryText(notify.CategoryError).Render(styles.IconError)
		if e.Field == "" {
			_, _ = fmt.Fprintf(w, "%s %s\n", icon, e.Message)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", icon, e.Field, e.Message)
	}
}
