package notify

import (
	"fmt"
	"strings"
)

// Category represents the kind of a notification or toast. It drives the
// icon, color and default toast duration.
type Category string

const (
	CategorySuccess Category = "success"
	CategoryWarning Category = "warning"
	CategoryError   Category = "error"
	CategoryInfo    Category = "info"
)

// Categories lists every category in display order.
var Categories = []Category{CategorySuccess, CategoryWarning, CategoryError, CategoryInfo}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySuccess, CategoryWarning, CategoryError, CategoryInfo:
		return true
	}
	return false
}

// OrInfo returns c, or CategoryInfo when c is not a known category.
func (c Category) OrInfo() Category {
	if c.Valid() {
		return c
	}
	return CategoryInfo
}

// Label returns the capitalised display name.
func (c Category) Label() string {
	switch c {
	case CategorySuccess:
		return "Success"
	case CategoryWarning:
		return "Warning"
	case CategoryError:
		return "Error"
	default:
		return "Info"
	}
}
