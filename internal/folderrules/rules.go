// Package folderrules holds the folder hierarchy table (which folder types may
// be nested under which) and the per-session store that tracks the level the
// UI is currently creating folders under.
package folderrules

import (
	"embed"
	"fmt"

	"mentorportal/internal/domain/models/drive"

	"gopkg.in/yaml.v3"
)

//go:embed config/hierarchy.yaml
var configFiles embed.FS

// knownTypes are the folder types the rest of the code relies on. The table
// must declare every one of them.
var knownTypes = []drive.FolderType{
	drive.FolderTypeProject,
	drive.FolderTypeAvances,
	drive.FolderTypeSesiones,
	drive.FolderTypeEquipo,
	drive.FolderTypeTema,
}

// Rules is the immutable folder hierarchy. Safe for concurrent use.
type Rules struct {
	order []Level
	rules map[Level]Rule
}

// Load parses and validates the embedded hierarchy table.
func Load() (*Rules, error) {
	data, err := configFiles.ReadFile("config/hierarchy.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy table: %w", err)
	}
	return Parse(data)
}

// MustLoad is Load for startup code: a broken table is a configuration error.
func MustLoad() *Rules {
	r, err := Load()
	if err != nil {
		panic(fmt.Sprintf("folderrules: %v", err))
	}
	return r
}

// Parse builds Rules from a YAML hierarchy document.
func Parse(data []byte) (*Rules, error) {
	var file hierarchyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hierarchy table: %w", err)
	}

	r := &Rules{rules: make(map[Level]Rule, len(file.Rules))}
	for _, rule := range file.Rules {
		if _, dup := r.rules[rule.Level]; dup {
			return nil, fmt.Errorf("level %q declared twice", rule.Level)
		}
		r.order = append(r.order, rule.Level)
		r.rules[rule.Level] = rule
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rules) validate() error {
	if _, ok := r.rules[Root]; !ok {
		return fmt.Errorf("level %q is not declared", Root)
	}
	for _, t := range knownTypes {
		if _, ok := r.rules[LevelOf(t)]; !ok {
			return fmt.Errorf("folder type %q is not declared", t)
		}
	}

	for _, level := range r.order {
		rule := r.rules[level]
		if rule.ParentType != "" {
			if _, ok := r.rules[rule.ParentType]; !ok {
				return fmt.Errorf("level %q: unknown parent %q", level, rule.ParentType)
			}
		}
		for _, child := range rule.AllowedTypes {
			if Level(child) == Root {
				return fmt.Errorf("level %q: root cannot be a child type", level)
			}
			if _, ok := r.rules[LevelOf(child)]; !ok {
				return fmt.Errorf("level %q: unknown child type %q", level, child)
			}
		}
	}

	// Allowed-children relation must be acyclic.
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Level]int, len(r.order))
	var visit func(Level) error
	visit = func(level Level) error {
		switch state[level] {
		case visiting:
			return fmt.Errorf("hierarchy cycle through %q", level)
		case done:
			return nil
		}
		state[level] = visiting
		for _, child := range r.rules[level].AllowedTypes {
			if err := visit(LevelOf(child)); err != nil {
				return err
			}
		}
		state[level] = done
		return nil
	}
	for _, level := range r.order {
		if err := visit(level); err != nil {
			return err
		}
	}
	return nil
}

// Rule returns the rule for a level. Panics on an undeclared level.
func (r *Rules) Rule(level Level) Rule {
	rule, ok := r.rules[level]
	if !ok {
		panic(fmt.Sprintf("folderrules: undeclared level %q", level))
	}
	rule.AllowedTypes = append([]drive.FolderType(nil), rule.AllowedTypes...)
	if rule.AllowedTypes == nil {
		rule.AllowedTypes = []drive.FolderType{}
	}
	return rule
}

// ChildTypesOf returns the folder types that may be created under level,
// in form order. Empty for leaf types.
func (r *Rules) ChildTypesOf(level Level) []drive.FolderType {
	return r.Rule(level).AllowedTypes
}

// RequiresTeamID reports whether creating a folder of type t needs a team id.
func (r *Rules) RequiresTeamID(t drive.FolderType) bool {
	return r.Rule(LevelOf(t)).RequiresTeamID
}

// Allows reports whether a folder of type child may be created under parent.
func (r *Rules) Allows(parent Level, child drive.FolderType) bool {
	rule, ok := r.rules[parent]
	if !ok {
		return false
	}
	for _, t := range rule.AllowedTypes {
		if t == child {
			return true
		}
	}
	return false
}

// Has reports whether level is declared.
func (r *Rules) Has(level Level) bool {
	_, ok := r.rules[level]
	return ok
}

// Label returns the display label of a folder type.
func (r *Rules) Label(t drive.FolderType) string {
	if rule, ok := r.rules[LevelOf(t)]; ok && rule.Label != "" {
		return rule.Label
	}
	return string(t)
}

// Levels returns all declared levels in table order.
func (r *Rules) Levels() []Level {
	return append([]Level(nil), r.order...)
}

// All returns every rule in table order.
func (r *Rules) All() []Rule {
	all := make([]Rule, 0, len(r.order))
	for _, level := range r.order {
		all = append(all, r.Rule(level))
	}
	return all
}

// ParseLevel validates user input naming a level.
func (r *Rules) ParseLevel(s string) (Level, error) {
	level := Level(s)
	if !r.Has(level) {
		return "", fmt.Errorf("unknown folder level %q", s)
	}
	return level, nil
}
