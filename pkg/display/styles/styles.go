// Package styles maps semantic names to lipgloss styles. The defaults ship
// embedded in the binary; a user file loaded via LoadStyles overrides them.
package styles

import (
	_ "embed"
	"os"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultStyles []byte

// ColorDef is an adaptive color pair in the YAML config
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is one style definition in the YAML config. Foreground and
// Background name entries of the colors table.
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
}

// Config is the full styles document
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

var registry map[string]lipgloss.Style

func init() {
	if err := loadBytes(defaultStyles); err != nil {
		// The embedded defaults are validated by tests; failing here means
		// a broken build, not a user error.
		panic(err)
	}
}

// LoadStyles replaces the registry with styles from a user file
func LoadStyles(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad,
			"failed to read styles file %s", path)
	}
	return loadBytes(data)
}

func loadBytes(data []byte) error {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "failed to parse styles")
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	styles := make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		style := lipgloss.NewStyle()
		if def.Bold {
			style = style.Bold(true)
		}
		if def.Italic {
			style = style.Italic(true)
		}
		if def.Underline {
			style = style.Underline(true)
		}
		if def.Foreground != "" {
			if c, ok := colors[def.Foreground]; ok {
				style = style.Foreground(c)
			} else {
				style = style.Foreground(lipgloss.Color(def.Foreground))
			}
		}
		if def.Background != "" {
			if c, ok := colors[def.Background]; ok {
				style = style.Background(c)
			} else {
				style = style.Background(lipgloss.Color(def.Background))
			}
		}
		styles[name] = style
	}

	registry = styles
	return nil
}

// Get returns the style registered under name; unknown names render unstyled
func Get(name string) lipgloss.Style {
	if style, ok := registry[name]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Names lists the registered style names
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
