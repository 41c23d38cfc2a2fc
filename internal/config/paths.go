package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const defaultBaseDir = ".agentchat"

// Paths holds resolved filesystem paths for agentchat data.
type Paths struct {
	Base     string // ~/.agentchat
	Config   string // ~/.agentchat/config.yaml
	Logs     string // ~/.agentchat/logs
	Data     string // ~/.agentchat/data
	Database string // ~/.agentchat/data/agentchat.db
}

// ResolvePaths computes all standard paths from the home directory.
// If AGENTCHAT_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("AGENTCHAT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	data := filepath.Join(base, "data")
	return Paths{
		Base:     base,
		Config:   filepath.Join(base, "config.yaml"),
		Logs:     filepath.Join(base, "logs"),
		Data:     data,
		Database: filepath.Join(data, "agentchat.db"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs, p.Data} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// blockedKeys are keys that must never appear in config paths.
var blockedKeys = map[string]bool{
	"__proto__":   true,
	"prototype":   true,
	"constructor": true,
}

// ParseConfigPath splits a dot-separated config path into segments.
// Returns an error if any segment is blocked or empty.
func ParseConfigPath(raw string) ([]string, error) {
	if raw == "" {
		return nil, &ConfigError{Message: "empty config path"}
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return nil, &ConfigError{Message: "config path contains empty segment"}
		}
		if blockedKeys[p] {
			return nil, &ConfigError{Message: "config path contains blocked key: " + p}
		}
	}
	return parts, nil
}

// Path segments address map keys, or list elements when the segment is a
// decimal index, so "hooks.messageAppended.0.command" reaches into a hook
// list.

// listIndex parses seg as an index below n.
func listIndex(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// GetValueAtPath returns the value at path.
func GetValueAtPath(root map[string]any, path []string) (any, bool) {
	current := any(root)
	for _, seg := range path {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			i, ok := listIndex(seg, len(node))
			if !ok {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}

// SetValueAtPath sets the value at path. Missing or scalar intermediates
// become maps; an index one past the end of a list appends.
func SetValueAtPath(root map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	root[path[0]] = setIn(root[path[0]], path[1:], value)
}

func setIn(node any, path []string, value any) any {
	if len(path) == 0 {
		return value
	}
	seg := path[0]
	if list, ok := node.([]any); ok {
		if i, ok := listIndex(seg, len(list)+1); ok {
			if i == len(list) {
				list = append(list, nil)
			}
			list[i] = setIn(list[i], path[1:], value)
			return list
		}
	}
	m, ok := node.(map[string]any)
	if !ok {
		m = map[string]any{}
	}
	m[seg] = setIn(m[seg], path[1:], value)
	return m
}

// UnsetValueAtPath removes the value at path and reports whether it existed.
// Removing a list element shifts the ones after it.
func UnsetValueAtPath(root map[string]any, path []string) bool {
	if len(path) == 0 {
		return false
	}
	_, removed := unsetIn(root, path)
	return removed
}

func unsetIn(node any, path []string) (any, bool) {
	seg, last := path[0], len(path) == 1
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[seg]
		if !ok {
			return n, false
		}
		if last {
			delete(n, seg)
			return n, true
		}
		updated, removed := unsetIn(child, path[1:])
		n[seg] = updated
		return n, removed
	case []any:
		i, ok := listIndex(seg, len(n))
		if !ok {
			return n, false
		}
		if last {
			return slices.Delete(n, i, i+1), true
		}
		updated, removed := unsetIn(n[i], path[1:])
		n[i] = updated
		return n, removed
	}
	return node, false
}
