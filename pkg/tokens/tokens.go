// Package tokens turns extracted raw design values into named, categorized design tokens.
//
// Naming is deterministic: the same extraction result always yields the same token names,
// which is what the generated documents, CSS variables and Tailwind config rely on.
package tokens

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kataras/figma-docgen/pkg/extractor"
)

// ErrNonFinite is returned when a NaN or Inf value would feed a naming threshold.
var ErrNonFinite = errors.New("non-finite token value")

// Color categories.
const (
	CategoryPrimary   = "primary"
	CategorySecondary = "secondary"
	CategorySemantic  = "semantic"
	CategoryNeutral   = "neutral"
)

// CategoryGap is the single category every spacing token belongs to.
const CategoryGap = "gap"

// ColorToken is a named color.
type ColorToken struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	RGBA     string `json:"rgba"`
	Category string `json:"category"`
}

// TypographyToken is a named text style.
type TypographyToken struct {
	Name          string  `json:"name"`
	FontFamily    string  `json:"fontFamily"`
	FontSize      float64 `json:"fontSize"`
	FontWeight    float64 `json:"fontWeight"`
	LineHeight    float64 `json:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing"`
	TextCase      string  `json:"textCase,omitempty"`
}

// SpacingToken is a named spacing value.
type SpacingToken struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Category string  `json:"category"`
}

// BorderRadiusToken is a named corner radius.
type BorderRadiusToken struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Set is every token derived from one analysis.
type Set struct {
	Colors       []ColorToken        `json:"colors"`
	Typography   []TypographyToken   `json:"typography"`
	Spacing      []SpacingToken      `json:"spacing"`
	BorderRadius []BorderRadiusToken `json:"borderRadius"`
}

// Empty reports whether s holds no tokens at all.
func (s *Set) Empty() bool {
	return s == nil || len(s.Colors)+len(s.Typography)+len(s.Spacing)+len(s.BorderRadius) == 0
}

// Synthesize derives the full token set from an extraction result. A nil result yields an empty set.
func Synthesize(res *extractor.Result) (*Set, error) {
	if res == nil {
		res = &extractor.Result{}
	}

	colors, err := GenerateColorTokens(res.Colors)
	if err != nil {
		return nil, fmt.Errorf("color tokens: %w", err)
	}
	typography, err := GenerateTypographyTokens(res.TextStyles)
	if err != nil {
		return nil, fmt.Errorf("typography tokens: %w", err)
	}
	spacing, err := GenerateSpacingTokens(res.AutoLayouts, res.Spacing)
	if err != nil {
		return nil, fmt.Errorf("spacing tokens: %w", err)
	}
	radii, err := GenerateBorderRadiusTokens(res.BorderRadius)
	if err != nil {
		return nil, fmt.Errorf("border radius tokens: %w", err)
	}

	return &Set{
		Colors:       colors,
		Typography:   typography,
		Spacing:      spacing,
		BorderRadius: radii,
	}, nil
}

// Brightness is the perceived brightness of a normalized color.
func Brightness(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// ClassifyColor names and categorizes the color at position i of the extraction order.
// Name and category come from the same branch so they cannot disagree.
func ClassifyColor(c extractor.ParsedColor, i int) (name, category string) {
	n := i + 1
	switch b := Brightness(c.R, c.G, c.B); {
	case b < 0.3:
		return fmt.Sprintf("neutral-%d-dark", n), CategoryNeutral
	case b > 0.7:
		return fmt.Sprintf("neutral-%d-light", n), CategoryNeutral
	case c.R > c.G && c.R > c.B:
		return fmt.Sprintf("primary-%d", n), CategoryPrimary
	case c.G > c.R && c.G > c.B:
		return fmt.Sprintf("secondary-%d", n), CategorySecondary
	default:
		return fmt.Sprintf("semantic-%d", n), CategorySemantic
	}
}

// GenerateColorTokens names every color in extraction order.
func GenerateColorTokens(colors []extractor.ParsedColor) ([]ColorToken, error) {
	out := make([]ColorToken, 0, len(colors))
	for i, c := range colors {
		if !finite(c.R, c.G, c.B, c.Alpha) {
			return nil, fmt.Errorf("color %s: %w", c.Hex, ErrNonFinite)
		}
		name, category := ClassifyColor(c, i)
		out = append(out, ColorToken{
			Name:     name,
			Value:    c.Hex,
			RGBA:     c.RGBA,
			Category: category,
		})
	}
	return out, nil
}

// GenerateTypographyTokens deduplicates styles on (family, size, weight) again, since callers
// may pass unfiltered lists, then names each by size band and weight.
func GenerateTypographyTokens(styles []extractor.ParsedTextStyle) ([]TypographyToken, error) {
	type key struct {
		family       string
		size, weight float64
	}

	out := make([]TypographyToken, 0, len(styles))
	seen := make(map[key]bool, len(styles))
	for _, s := range styles {
		if !finite(s.FontSize, s.FontWeight, s.LineHeight, s.LetterSpacing) {
			return nil, fmt.Errorf("text style %s/%g/%g: %w", s.FontFamily, s.FontSize, s.FontWeight, ErrNonFinite)
		}
		k := key{s.FontFamily, s.FontSize, s.FontWeight}
		if seen[k] {
			continue
		}
		seen[k] = true

		out = append(out, TypographyToken{
			Name:          TypographyName(s.FontSize, s.FontWeight),
			FontFamily:    s.FontFamily,
			FontSize:      s.FontSize,
			FontWeight:    s.FontWeight,
			LineHeight:    s.LineHeight,
			LetterSpacing: s.LetterSpacing,
			TextCase:      s.TextCase,
		})
	}
	return out, nil
}

// TypographyName returns "<band>-<weight>", e.g. heading-bold or body-regular.
func TypographyName(size, weight float64) string {
	var band, qualifier string
	switch {
	case size >= 32:
		band, qualifier = "heading", weightQualifier(weight, 700, "bold")
	case size >= 24:
		band, qualifier = "subheading", weightQualifier(weight, 600, "semibold")
	case size >= 18:
		band, qualifier = "body-large", weightQualifier(weight, 500, "medium")
	case size >= 16:
		band, qualifier = "body", weightQualifier(weight, 500, "medium")
	case size >= 14:
		band, qualifier = "body-small", weightQualifier(weight, 500, "medium")
	default:
		band, qualifier = "caption", weightQualifier(weight, 500, "medium")
	}
	return band + "-" + qualifier
}

func weightQualifier(weight, threshold float64, heavy string) string {
	if weight >= threshold {
		return heavy
	}
	return "regular"
}

// GenerateSpacingTokens collects every padding and gap value from auto-layout and spacing
// records, deduplicates and sorts them, and names each by magnitude and position.
func GenerateSpacingTokens(layouts []extractor.ParsedAutoLayout, spacing []extractor.ParsedSpacing) ([]SpacingToken, error) {
	var values []float64
	for _, l := range layouts {
		values = append(values, l.PaddingTop, l.PaddingRight, l.PaddingBottom, l.PaddingLeft, l.ItemSpacing)
	}
	for _, s := range spacing {
		if s.Padding != nil {
			values = append(values, s.Padding.Top, s.Padding.Right, s.Padding.Bottom, s.Padding.Left)
		}
		if s.Gap != nil {
			values = append(values, *s.Gap)
		}
	}

	sorted, err := sortedUnique(values)
	if err != nil {
		return nil, err
	}

	out := make([]SpacingToken, 0, len(sorted))
	for i, v := range sorted {
		out = append(out, SpacingToken{Name: SpacingName(v, i), Value: v, Category: CategoryGap})
	}
	return out, nil
}

// SpacingName names a spacing value at position i of the sorted, deduplicated sequence.
func SpacingName(v float64, i int) string {
	switch {
	case v == 0:
		return "none"
	case v <= 4:
		return fmt.Sprintf("xs-%d", i)
	case v <= 8:
		return fmt.Sprintf("sm-%d", i)
	case v <= 16:
		return fmt.Sprintf("md-%d", i)
	case v <= 24:
		return fmt.Sprintf("lg-%d", i)
	case v <= 32:
		return fmt.Sprintf("xl-%d", i)
	default:
		return fmt.Sprintf("xxl-%d", i)
	}
}

// GenerateBorderRadiusTokens sorts and deduplicates radii, then names each by magnitude and position.
func GenerateBorderRadiusTokens(radii []float64) ([]BorderRadiusToken, error) {
	sorted, err := sortedUnique(radii)
	if err != nil {
		return nil, err
	}

	out := make([]BorderRadiusToken, 0, len(sorted))
	for i, v := range sorted {
		out = append(out, BorderRadiusToken{Name: RadiusName(v, i), Value: v})
	}
	return out, nil
}

// RadiusName names a radius at position i of the sorted, deduplicated sequence.
func RadiusName(v float64, i int) string {
	switch {
	case v == 0:
		return "none"
	case v <= 4:
		return fmt.Sprintf("sm-%d", i)
	case v <= 8:
		return fmt.Sprintf("md-%d", i)
	case v <= 16:
		return fmt.Sprintf("lg-%d", i)
	default:
		return fmt.Sprintf("xl-%d", i)
	}
}

func sortedUnique(values []float64) ([]float64, error) {
	seen := make(map[float64]bool, len(values))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !finite(v) {
			return nil, fmt.Errorf("value %v: %w", v, ErrNonFinite)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Float64s(out)
	return out, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
