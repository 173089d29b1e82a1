package router

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hyungsein/shorts-automation/pkg/pipeline"
)

// Route is the production profile for one content type: where topics come
// from, which model writes and reviews, which voice narrates, and the visual
// style prefix for image prompts.
type Route struct {
	Adapter    string   `yaml:"adapter"`
	Model      string   `yaml:"model,omitempty"`
	Subreddits []string `yaml:"subreddits"`
	Voice      string   `yaml:"voice"`
	ImageStyle string   `yaml:"image_style,omitempty"`
	WithImages bool     `yaml:"with_images"`
}

// Table maps content types to routes.
type Table struct {
	Routes  map[pipeline.ContentType]Route `yaml:"routes"`
	Default Route                          `yaml:"default"`
}

// DefaultTable returns the built-in routing table.
func DefaultTable() *Table {
	return &Table{
		Routes: map[pipeline.ContentType]Route{
			pipeline.ContentStory: {
				Adapter:    "anthropic",
				Subreddits: []string{"AmItheAsshole", "tifu", "MaliciousCompliance", "pettyrevenge"},
				Voice:      "rachel",
				ImageStyle: "cinematic, moody lighting, realistic",
				WithImages: true,
			},
			pipeline.ContentHorror: {
				Adapter:    "anthropic",
				Subreddits: []string{"nosleep", "creepypasta", "shortscarystories", "TwoSentenceHorror"},
				Voice:      "arnold",
				ImageStyle: "dark, eerie, fog, high contrast",
				WithImages: true,
			},
			pipeline.ContentFacts: {
				Adapter:    "google",
				Subreddits: []string{"todayilearned", "interestingasfuck", "Damnthatsinteresting"},
				Voice:      "adam",
				ImageStyle: "bright, clean, documentary style",
				WithImages: true,
			},
			pipeline.ContentMotivation: {
				Adapter:    "openai",
				Subreddits: []string{"GetMotivated", "quotes", "LifeProTips"},
				Voice:      "josh",
				ImageStyle: "golden hour, inspiring, wide shots",
				WithImages: false,
			},
		},
		Default: Route{Adapter: "anthropic", Voice: "rachel", WithImages: true},
	}
}

// Load reads a routing table from a YAML file, filling gaps from the
// built-in defaults.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse routing table %s: %w", path, err)
	}
	applyDefaults(&table)
	return &table, nil
}

func applyDefaults(table *Table) {
	defaults := DefaultTable()
	if table.Routes == nil {
		table.Routes = defaults.Routes
	}
	if table.Default.Adapter == "" {
		table.Default = defaults.Default
	}
	for contentType, route := range table.Routes {
		base, ok := defaults.Routes[contentType]
		if !ok {
			base = defaults.Default
		}
		if route.Adapter == "" {
			route.Adapter = base.Adapter
		}
		if route.Voice == "" {
			route.Voice = base.Voice
		}
		if len(route.Subreddits) == 0 {
			route.Subreddits = base.Subreddits
		}
		table.Routes[contentType] = route
	}
}

// Resolve returns the route for a content type, falling back to the default.
func (t *Table) Resolve(contentType pipeline.ContentType) Route {
	if route, ok := t.Routes[contentType]; ok {
		return route
	}
	return t.Default
}
