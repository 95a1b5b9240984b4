package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
)

// LayoutTemplate is a named, predefined obstacle arrangement
type LayoutTemplate struct {
	Name        string
	Description string
	Arena       ArenaConfig
}

var layoutTemplates = map[string]*LayoutTemplate{
	"walled_circle": {
		Name:        "Walled Circle",
		Description: "Border wall with one round obstacle in the middle",
		Arena:       DefaultConfig().Arena,
	},
	"open": {
		Name:        "Open Arena",
		Description: "Border wall only",
		Arena: ArenaConfig{
			Width:        768,
			Height:       512,
			BorderMargin: 20,
		},
	},
	"pillars": {
		Name:        "Pillars",
		Description: "Border wall with a 3x2 grid of round pillars",
		Arena: ArenaConfig{
			Width:        768,
			Height:       512,
			BorderMargin: 20,
			Circles: []CircleConfig{
				{X: 192, Y: 170, Radius: 30},
				{X: 384, Y: 170, Radius: 30},
				{X: 576, Y: 170, Radius: 30},
				{X: 192, Y: 342, Radius: 30},
				{X: 384, Y: 342, Radius: 30},
				{X: 576, Y: 342, Radius: 30},
			},
		},
	},
	"corridor": {
		Name:        "Corridor",
		Description: "Border wall split by two offset baffles",
		Arena: ArenaConfig{
			Width:        768,
			Height:       512,
			BorderMargin: 20,
			Rects: []RectConfig{
				{X: 250, Y: 20, Width: 20, Height: 320},
				{X: 500, Y: 172, Width: 20, Height: 320},
			},
		},
	},
}

// GetLayoutTemplate returns the named template, or nil if none exists
func GetLayoutTemplate(name string) *LayoutTemplate {
	return layoutTemplates[name]
}

// ListLayoutTemplates maps every template name to its description
func ListLayoutTemplates() map[string]string {
	out := make(map[string]string, len(layoutTemplates))
	for name, tmpl := range layoutTemplates {
		out[name] = tmpl.Description
	}
	return out
}

// LayoutNames returns the template names in sorted order
func LayoutNames() []string {
	return slices.Sorted(maps.Keys(layoutTemplates))
}

// ApplyLayoutTemplate replaces the arena of config with a copy of the
// named template's arena
func ApplyLayoutTemplate(config *SimConfig, name string) error {
	tmpl := GetLayoutTemplate(name)
	if tmpl == nil {
		return fmt.Errorf("unknown layout template %q", name)
	}
	arena := tmpl.Arena
	arena.Circles = slices.Clone(tmpl.Arena.Circles)
	arena.Rects = slices.Clone(tmpl.Arena.Rects)
	config.Arena = arena
	config.Run.Layout = name
	return nil
}

// LoadConfigWithTemplate loads path if it exists, falling back to the
// defaults, and then applies the named layout template
func LoadConfigWithTemplate(path, layout string) (*SimConfig, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if err := ApplyLayoutTemplate(config, layout); err != nil {
		return nil, err
	}
	return config, nil
}
