package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ModelPreset bundles a provider model identifier with its generation
// parameters. The submission UI selects one by name.
type ModelPreset struct {
	ID     string
	Config map[string]any
}

var presets = map[string]ModelPreset{
	"flux": {
		ID: "black-forest-labs/flux-1.1-pro",
		Config: map[string]any{
			"aspect_ratio":      "1:1",
			"output_format":     "webp",
			"output_quality":    80,
			"safety_tolerance":  2,
			"prompt_upsampling": true,
		},
	},
	"imagen": {
		ID: "google/imagen-3-fast",
		Config: map[string]any{
			"size": "1365x1024",
		},
	},
}

// Preset looks up a model preset by its short name.
func Preset(name string) (ModelPreset, bool) {
	preset, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return preset, ok
}

// DefaultPreset is the model the exhibit currently runs.
func DefaultPreset() ModelPreset {
	return presets["flux"]
}

// ForHeadline wraps the raw visitor headline in the scene instruction the
// image model responds best to.
func ForHeadline(headline string) string {
	headline = strings.TrimSpace(headline)
	return fmt.Sprintf(
		"Generate a vivid, realistic image depicting this future scenario: %q. Make it detailed and imaginative, focusing on the key elements of the scene.",
		headline,
	)
}

// Caption title-cases a free-form team name for gallery display.
func Caption(teamName string) string {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return ""
	}
	return cases.Title(language.English).String(teamName)
}
