package service

import (
	_ "embed"
	"fmt"
	"strings"

	projectmodel "creatorhub/internal/project/model"
	"creatorhub/internal/studio/model"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

const topicPlaceholder = "{topic}"

// Catalog indexes presets by project type, keeping file order for listing.
type Catalog struct {
	presets []model.Preset
	byType  map[string]model.Preset
}

// LoadCatalog parses the built-in presets.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(presetsYAML)
}

// ParseCatalog parses and checks a preset document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Presets []model.Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	c := &Catalog{byType: make(map[string]model.Preset, len(doc.Presets))}
	for i, p := range doc.Presets {
		switch {
		case !projectmodel.ValidType(p.Type):
			return nil, fmt.Errorf("preset %d: unknown project type %q", i, p.Type)
		case strings.TrimSpace(p.Label) == "":
			return nil, fmt.Errorf("preset %s: label is required", p.Type)
		case !strings.Contains(p.Prompt, topicPlaceholder):
			return nil, fmt.Errorf("preset %s: prompt must contain %s", p.Type, topicPlaceholder)
		}
		if _, dup := c.byType[p.Type]; dup {
			return nil, fmt.Errorf("preset %s: defined twice", p.Type)
		}
		c.byType[p.Type] = p
		c.presets = append(c.presets, p)
	}
	return c, nil
}

// All returns the presets in catalog order.
func (c *Catalog) All() []model.Preset {
	out := make([]model.Preset, len(c.presets))
	copy(out, c.presets)
	return out
}

func (c *Catalog) Get(projectType string) (model.Preset, bool) {
	p, ok := c.byType[projectType]
	return p, ok
}

// Render fills the preset prompt for projectType with topic.
func (c *Catalog) Render(projectType, topic string) (string, error) {
	p, ok := c.byType[projectType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoPreset, projectType)
	}
	return strings.ReplaceAll(p.Prompt, topicPlaceholder, topic), nil
}
