package textcmd

import (
	"fmt"
	"slices"
	"strings"
)

// table maps command names and aliases to commands. Each command appears
// once under its name and once per alias.
type table struct {
	byKey map[string]*Command
}

func (t *table) add(cmd *Command, owner string) error {
	keys := append([]string{cmd.name}, cmd.aliases...)
	for i, k := range keys {
		if _, taken := t.byKey[k]; taken || slices.Contains(keys[:i], k) {
			return fmt.Errorf("%w: multiple commands share the name or alias %q", ErrDuplicateCommand, strings.TrimSpace(owner+" "+k))
		}
	}
	if t.byKey == nil {
		t.byKey = make(map[string]*Command, len(keys))
	}
	for _, k := range keys {
		t.byKey[k] = cmd
	}
	return nil
}

// remove drops key. Removing a command's name drops its aliases too;
// removing an alias drops only that alias.
func (t *table) remove(key string) *Command {
	cmd, ok := t.byKey[key]
	if !ok {
		return nil
	}
	delete(t.byKey, key)
	if key != cmd.name {
		return cmd
	}
	for _, a := range cmd.aliases {
		if t.byKey[a] == cmd {
			delete(t.byKey, a)
		}
	}
	return cmd
}

func (t *table) get(key string) *Command {
	return t.byKey[key]
}

func (t *table) len() int {
	return len(t.byKey)
}

// unique returns each command once, sorted by name.
func (t *table) unique() []*Command {
	seen := make(map[*Command]bool, len(t.byKey))
	out := make([]*Command, 0, len(t.byKey))
	for _, cmd := range t.byKey {
		if seen[cmd] {
			continue
		}
		seen[cmd] = true
		out = append(out, cmd)
	}
	slices.SortFunc(out, func(a, b *Command) int { return strings.Compare(a.name, b.name) })
	return out
}

// keys returns every name and alias, sorted.
func (t *table) keys() []string {
	out := make([]string, 0, len(t.byKey))
	for k := range t.byKey {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// find resolves a space-separated path. It returns nil when any segment is
// missing.
func (t *table) find(path string) *Command {
	names := strings.Fields(path)
	if len(names) == 0 {
		return nil
	}
	cmd := t.get(names[0])
	for _, name := range names[1:] {
		if cmd == nil {
			return nil
		}
		cmd = cmd.children.get(name)
	}
	return cmd
}
