package config

import "sort"

var Presets = map[string]map[string]*Config{
	"drift": {
		"calm": {
			Effect: "drift", Theme: "dark", Count: 30, Connections: "auto",
			Field: FieldConfig{LinkDistance: 80},
		},
		"dense": {
			Effect: "drift", Theme: "dark", Count: 400, Connections: "kdtree",
			Field: FieldConfig{LinkDistance: 60},
		},
		"paper": {
			Effect: "drift", Theme: "light", Count: 50, Connections: "auto",
			Field: FieldConfig{LinkDistance: 100},
		},
		"dots": {
			Effect: "drift", Theme: "dark", Count: 120, Connections: "none",
		},
	},
	"starfield": {
		"cruise": {
			Effect: "starfield", Theme: "dark", Count: 100,
			Field: FieldConfig{MaxDepth: 1000, FocalLength: 200, TrailFade: 0.05},
		},
		"warp": {
			Effect: "starfield", Theme: "dark", Count: 300,
			Field: FieldConfig{MaxDepth: 600, FocalLength: 300, TrailFade: 0.02},
		},
		"sparse": {
			Effect: "starfield", Theme: "dark", Count: 40,
			Field: FieldConfig{MaxDepth: 1500, FocalLength: 150, TrailFade: 0.1},
		},
	},
}

func GetPreset(effect, preset string) *Config {
	effectPresets, ok := Presets[effect]
	if !ok {
		return nil
	}
	cfg, ok := effectPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns the preset names for effect in sorted order.
func ListPresets(effect string) []string {
	effectPresets, ok := Presets[effect]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(effectPresets))
	for name := range effectPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the non-zero fields of p onto c.
func (c *Config) Apply(p *Config) {
	if p == nil {
		return
	}
	if p.Effect != "" {
		c.Effect = p.Effect
	}
	if p.Theme != "" {
		c.Theme = p.Theme
	}
	if p.Count != 0 {
		c.Count = p.Count
	}
	if p.Connections != "" {
		c.Connections = p.Connections
	}
	if p.Field.LinkDistance > 0 {
		c.Field.LinkDistance = p.Field.LinkDistance
	}
	if p.Field.MaxDepth > 0 {
		c.Field.MaxDepth = p.Field.MaxDepth
	}
	if p.Field.FocalLength > 0 {
		c.Field.FocalLength = p.Field.FocalLength
	}
	if p.Field.TrailFade > 0 {
		c.Field.TrailFade = p.Field.TrailFade
	}
}
