package folderrules

import (
	"fmt"

	"mentorportal/internal/domain/models/drive"

	"gopkg.in/yaml.v3"
)

// Level is a position in the hierarchy where folders can be created:
// either Root or one of the folder types.
type Level string

// Root is the pseudo-level above all projects.
const Root Level = "root"

// LevelOf returns the level a folder of type t creates children under.
func LevelOf(t drive.FolderType) Level {
	return Level(t)
}

// Rule describes what may be created under one level.
type Rule struct {
	Level          Level              `yaml:"-" json:"level"`
	Label          string             `yaml:"label" json:"label"`
	ParentType     Level              `yaml:"parent" json:"parent_type,omitempty"`
	AllowedTypes   []drive.FolderType `yaml:"allowed" json:"allowed_types"`
	RequiresTeamID bool               `yaml:"requires_team_id" json:"requires_team_id"`
}

// hierarchyFile is the embedded YAML document.
type hierarchyFile struct {
	Rules []Rule
}

// UnmarshalYAML keeps levels in declaration order, which is also the order
// the UI lists them in.
func (h *hierarchyFile) UnmarshalYAML(node *yaml.Node) error {
	type levelsOnly struct {
		Levels map[string]Rule `yaml:"levels"`
	}
	var m levelsOnly
	if err := node.Decode(&m); err != nil {
		return err
	}

	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value != "levels" {
			continue
		}
		levelsNode := node.Content[i+1]
		if levelsNode.Kind != yaml.MappingNode {
			return fmt.Errorf("levels must be a mapping, got %v", levelsNode.Tag)
		}
		for j := 0; j < len(levelsNode.Content); j += 2 {
			name := levelsNode.Content[j].Value
			rule := m.Levels[name]
			rule.Level = Level(name)
			if rule.AllowedTypes == nil {
				rule.AllowedTypes = []drive.FolderType{}
			}
			h.Rules = append(h.Rules, rule)
		}
		break
	}

	return nil
}
