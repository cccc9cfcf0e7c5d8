package tui

import (
	"slices"
	"strings"

	"github.com/colonyops/beacon/internal/core/config"
)

// KeyMap resolves key strings to dashboard actions.
type KeyMap struct {
	bindings map[string]config.Keybinding
}

// NewKeyMap builds a key map from merged config keybindings.
func NewKeyMap(bindings map[string]config.Keybinding) KeyMap {
	return KeyMap{bindings: bindings}
}

// Resolve returns the action bound to key.
func (k KeyMap) Resolve(key string) (string, bool) {
	kb, ok := k.bindings[key]
	if !ok {
		return "", false
	}
	return kb.Action, true
}

// KeyFor returns the first key, sorted, bound to action.
func (k KeyMap) KeyFor(action string) string {
	keys := k.keysFor(action)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

func (k KeyMap) keysFor(action string) []string {
	var keys []string
	for key, kb := range k.bindings {
		if kb.Action == action {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Help renders "[key] help" pairs for the given actions in order. Actions
// without a bound key are skipped.
func (k KeyMap) Help(actions ...string) string {
	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		key := k.KeyFor(action)
		if key == "" {
			continue
		}
		help := k.bindings[key].Help
		if help == "" {
			help = strings.ReplaceAll(action, "_", " ")
		}
		parts = append(parts, "["+key+"] "+help)
	}
	return strings.Join(parts, "  ")
}
