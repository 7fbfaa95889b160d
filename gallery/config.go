package gallery

import (
	"errors"
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"
	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/readme_gallery/readme"
)

// Config holds every setting of a gallery run. Use
// DefaultConfig as the starting point.
type Config struct {
	// Repo is the "org/repo" identifier used in image
	// URLs.
	Repo string `yaml:"repo"`

	// Branch is the branch the raw URLs point at.
	Branch string `yaml:"branch"`

	// Host serves raw file content.
	Host string `yaml:"host"`

	// Readme is the document path relative to the
	// root.
	Readme string `yaml:"readme"`

	// Patterns are glob patterns matched against file
	// base names.
	Patterns []string `yaml:"patterns"`

	// Exclude lists path segment names; any path
	// containing one of them is skipped.
	Exclude []string `yaml:"exclude"`

	// Limit keeps only the lexicographically-last
	// Limit images. Zero or less keeps all of them.
	Limit int `yaml:"limit"`

	// Columns is the number of images per table row.
	Columns int `yaml:"columns"`

	// ThumbWidth is the width attribute of thumbnails.
	ThumbWidth int `yaml:"thumb_width"`

	// Title is the heading line above the table.
	Title string `yaml:"title"`

	// ImageCell and MetaCell are cell templates with
	// {url}, {rel} and {width} placeholders.
	ImageCell string `yaml:"image_cell"`
	MetaCell  string `yaml:"meta_cell"`

	StartMarker string `yaml:"start_marker"`
	EndMarker   string `yaml:"end_marker"`
}

// DefaultConfig returns the compiled-in settings.
func DefaultConfig() Config {
	mk := readme.DefaultMarkers()

	return Config{
		Repo:        "totkd/Assets",
		Branch:      "main",
		Host:        "raw.githubusercontent.com",
		Readme:      "README.md",
		Patterns:    []string{"*.png", "*.jpg", "*.jpeg"},
		Exclude:     []string{".git", ".github", "scripts"},
		Limit:       30,
		Columns:     3,
		ThumbWidth:  220,
		Title:       "### Latest Images",
		ImageCell:   `<a href="{url}"><img src="{url}" width="{width}" /></a>`,
		MetaCell:    "`{url}`<br>`{rel}`",
		StartMarker: mk.Start,
		EndMarker:   mk.End,
	}
}

// LoadConfig overlays the YAML file at path on the
// defaults. An empty path returns the defaults. Unknown
// keys are rejected.
func LoadConfig(path string) (Config, error) {
	const errCtx = "loading config"

	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.UnmarshalWithOptions(
		data, &cfg, yaml.DisallowUnknownField(),
	); err != nil {
		return Config{}, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return cfg, nil
}

// namedValue pairs a config key with its value so checks
// run, and report, in a fixed order.
type namedValue struct {
	name  string
	value string
}

// Validate reports every invalid setting at once, in
// field order.
func (c Config) Validate() error {
	const errCtx = "invalid config"

	var problems []error

	for _, field := range []namedValue{
		{"repo", c.Repo},
		{"branch", c.Branch},
		{"host", c.Host},
		{"readme", c.Readme},
		{"start_marker", c.StartMarker},
		{"end_marker", c.EndMarker},
	} {
		if field.value == "" {
			problems = append(
				problems, fmt.Errorf("%s must be set", field.name),
			)
		}
	}

	if c.StartMarker != "" && c.StartMarker == c.EndMarker {
		problems = append(
			problems,
			errors.New("start_marker and end_marker must differ"),
		)
	}

	if len(c.Patterns) == 0 {
		problems = append(
			problems, errors.New("at least one pattern is required"),
		)
	}

	if _, err := c.matchers(); err != nil {
		problems = append(problems, err)
	}

	if c.Columns < 1 {
		problems = append(
			problems,
			fmt.Errorf("columns must be positive, got %d", c.Columns),
		)
	}

	if c.ThumbWidth < 1 {
		problems = append(
			problems,
			fmt.Errorf("thumb_width must be positive, got %d", c.ThumbWidth),
		)
	}

	for _, field := range []namedValue{
		{"image_cell", c.ImageCell},
		{"meta_cell", c.MetaCell},
	} {
		if _, err := fasttemplate.NewTemplate(
			field.value, "{", "}",
		); err != nil {
			problems = append(
				problems, fmt.Errorf("%s: %w", field.name, err),
			)
		}
	}

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %w", errCtx, errors.Join(problems...))
}

// matchers compiles Patterns.
func (c Config) matchers() ([]glob.Glob, error) {
	gs := make([]glob.Glob, 0, len(c.Patterns))

	for _, p := range c.Patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}

		gs = append(gs, g)
	}

	return gs, nil
}

func (c Config) markers() readme.Markers {
	return readme.Markers{
		Start: c.StartMarker,
		End:   c.EndMarker,
	}
}
