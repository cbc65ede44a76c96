package ammoseek

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lukman83/ammo-bundler/internal/platform"
)

// caliberSlugs maps user-facing caliber names (lower case, no spaces) to
// AmmoSeek URL slugs.
var caliberSlugs = map[string]string{
	"9mm":        "9mm-luger",
	"9mmluger":   "9mm-luger",
	"5.56":       "5.56-nato",
	"5.56nato":   "5.56-nato",
	".223":       "223-remington",
	"223":        "223-remington",
	"45acp":      "45-acp",
	".45acp":     "45-acp",
	"38special":  "38-special",
	".38special": "38-special",
	"380acp":     "380-acp",
	".380acp":    "380-acp",
	"40s&w":      "40-s&w",
	".40s&w":     "40-s&w",
	"10mm":       "10mm-auto",
	"357mag":     "357-magnum",
	".357magnum": "357-magnum",
	"22lr":       "22-lr",
	".22lr":      "22-lr",
	"7.62x39":    "7.62x39mm",
	".308":       "308-winchester",
	"308":        "308-winchester",
	"12gauge":    "12-gauge",
	"12ga":       "12-gauge",
}

var slugShape = regexp.MustCompile(`^[a-z0-9.&]+(-[a-z0-9.&]+)+$`)

func caliberKey(caliber string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(caliber)), " ", "")
}

// Slug returns the AmmoSeek slug for caliber. Unknown names are passed
// through as-is unless strict is set; strict mode still accepts values that
// already look like a slug.
func Slug(caliber string, strict bool) (string, error) {
	key := caliberKey(caliber)
	if slug, ok := caliberSlugs[key]; ok {
		return slug, nil
	}
	if key == "" || (strict && !slugShape.MatchString(key)) {
		return "", fmt.Errorf("%w: %q", platform.ErrUnknownCaliber, caliber)
	}
	return key, nil
}

// Caliber is one entry of the known caliber table.
type Caliber struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Calibers lists the built-in caliber table sorted by slug, then name.
func Calibers() []Caliber {
	out := make([]Caliber, 0, len(caliberSlugs))
	for name, slug := range caliberSlugs {
		out = append(out, Caliber{Name: name, Slug: slug})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slug != out[j].Slug {
			return out[i].Slug < out[j].Slug
		}
		return out[i].Name < out[j].Name
	})
	return out
}
