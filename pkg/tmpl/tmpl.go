// Package tmpl renders Go templates used by notification hooks.
package tmpl

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// shellQuote wraps s in single quotes so it is safe to pass to sh -c.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// money renders whole dollars with thousands separators.
func money(amount float64) string {
	s := strconv.FormatInt(int64(amount), 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

var funcs = template.FuncMap{
	"shq":   shellQuote,
	"join":  strings.Join,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"money": money,
}

// Render executes tmpl against data. Unknown keys are errors.
//
// Available template functions:
//   - shq: shell-quote a string
//   - join: join a string slice with a separator
//   - upper, lower: change case
//   - money: format a dollar amount, e.g. 2500 -> $2,500
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// Validate renders tmpl against sample data and reports any error.
func Validate(tmpl string, sample any) error {
	_, err := Render(tmpl, sample)
	return err
}
