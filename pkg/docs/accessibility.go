package docs

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kataras/figma-docgen/pkg/design"
	"github.com/kataras/figma-docgen/pkg/extractor"
	"github.com/kataras/figma-docgen/pkg/tokens"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// WCAG 2.1 contrast thresholds.
const (
	contrastAA      = 4.5
	contrastAALarge = 3.0
	contrastAAA     = 7.0
	minTextSize     = 12.0
)

// ColorContrast is the contrast of one color token against white and black.
type ColorContrast struct {
	Token   string  `json:"token"`
	Hex     string  `json:"hex"`
	OnWhite float64 `json:"onWhite"`
	OnBlack float64 `json:"onBlack"`
	BestOn  string  `json:"bestOn"`
}

// TextContrast is the contrast of a text color against the background it is placed on.
type TextContrast struct {
	NodeID     string  `json:"nodeId"`
	NodeName   string  `json:"nodeName"`
	Foreground string  `json:"foreground"`
	Background string  `json:"background"`
	FontSize   float64 `json:"fontSize"`
	Ratio      float64 `json:"ratio"`
	LargeText  bool    `json:"largeText"`
	PassesAA   bool    `json:"passesAA"`
	PassesAAA  bool    `json:"passesAAA"`
}

// Issue is one accessibility finding.
type Issue struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	NodeID   string `json:"nodeId,omitempty"`
}

// Accessibility is the accessibility report. Score is 0-100.
type Accessibility struct {
	Score           int             `json:"score"`
	Summary         string          `json:"summary"`
	Palette         []ColorContrast `json:"palette"`
	Text            []TextContrast  `json:"text"`
	Issues          []Issue         `json:"issues"`
	Recommendations []string        `json:"recommendations"`
}

const accessibilityPrompt = `You are an accessibility specialist. The input contains design tokens and, under "context",
a computed WCAG 2.1 report (contrast ratios, issues and a score). Do not recompute or contradict the numbers.
Return a JSON object with exactly these fields:
  "summary": a short paragraph explaining the accessibility state of the design,
  "recommendations": an array of concrete fixes, most important first.
Return JSON only.`

type accessibilityAnswer struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// Accessibility checks contrast and text sizes. The measurements are always computed
// locally; the model only writes the summary and recommendations.
func (g *Generator) Accessibility(ctx context.Context, in Input) Result[Accessibility] {
	def := defaultAccessibility(in)

	m, err := ask[accessibilityAnswer](ctx, g, accessibilityPrompt, newPromptInput(in, def))
	if err != nil {
		return fallback(g, "accessibility", def, err)
	}
	if m.Summary == "" {
		return fallback(g, "accessibility", def, errIncomplete("summary"))
	}

	out := def
	out.Summary = m.Summary
	out.Recommendations = orDefaultList(m.Recommendations, def.Recommendations)
	return model(out)
}

func defaultAccessibility(in Input) Accessibility {
	set := tokenSet(in)
	a := Accessibility{
		Palette:         paletteContrast(set.Colors),
		Text:            []TextContrast{},
		Issues:          []Issue{},
		Recommendations: []string{},
	}

	if err := design.Validate(in.Roots); err == nil {
		a.Text = textContrast(in.Roots)
	}

	for _, tc := range a.Text {
		if tc.PassesAA {
			continue
		}
		severity := SeverityWarning
		if tc.Ratio < contrastAALarge {
			severity = SeverityError
		}
		a.Issues = append(a.Issues, Issue{
			Severity: severity,
			NodeID:   tc.NodeID,
			Message: fmt.Sprintf("%q: %s on %s has contrast %.2f:1, below the AA minimum of %.1f:1.",
				tc.NodeName, tc.Foreground, tc.Background, tc.Ratio, requiredRatio(tc.LargeText)),
		})
	}

	for _, t := range set.Typography {
		switch {
		case t.FontSize < minTextSize:
			a.Issues = append(a.Issues, Issue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Text style %s (%s) is %gpx, smaller than the %gpx minimum for readable text.", t.Name, t.FontFamily, t.FontSize, minTextSize),
			})
		case t.FontWeight < 300 && t.FontSize < 16:
			a.Issues = append(a.Issues, Issue{
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("Text style %s combines a light weight (%g) with a small size (%gpx).", t.Name, t.FontWeight, t.FontSize),
			})
		}
	}

	a.Score = score(a.Issues)

	var errs, warns int
	for _, issue := range a.Issues {
		switch issue.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warns++
		}
	}
	a.Summary = fmt.Sprintf("Checked %d text %s and %d palette colors: %d errors and %d warnings. Score %d/100.",
		len(a.Text), plural(len(a.Text), "color pairing", "color pairings"), len(a.Palette), errs, warns, a.Score)

	if errs+warns > 0 {
		a.Recommendations = append(a.Recommendations, "Raise the contrast of the flagged text to at least 4.5:1 (3:1 for large text).")
	}
	for _, issue := range a.Issues {
		if strings.Contains(issue.Message, "smaller than") {
			a.Recommendations = append(a.Recommendations, fmt.Sprintf("Use at least %gpx for body and caption text.", minTextSize))
			break
		}
	}
	return a
}

func score(issues []Issue) int {
	s := 100
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			s -= 15
		case SeverityWarning:
			s -= 7
		case SeverityInfo:
			s -= 2
		}
	}
	if s < 0 {
		return 0
	}
	return s
}

func requiredRatio(large bool) float64 {
	if large {
		return contrastAALarge
	}
	return contrastAA
}

func paletteContrast(colors []tokens.ColorToken) []ColorContrast {
	white := design.RGBA{R: 1, G: 1, B: 1, A: 1}
	black := design.RGBA{A: 1}

	out := make([]ColorContrast, 0, len(colors))
	for _, c := range colors {
		rgb, ok := parseHex(c.Value)
		if !ok {
			continue
		}
		cc := ColorContrast{
			Token:   c.Name,
			Hex:     c.Value,
			OnWhite: round2(ContrastRatio(rgb, white)),
			OnBlack: round2(ContrastRatio(rgb, black)),
			BestOn:  "white",
		}
		if cc.OnBlack > cc.OnWhite {
			cc.BestOn = "black"
		}
		out = append(out, cc)
	}
	return out
}

// textContrast pairs every TEXT node's first solid fill with the nearest opaque
// ancestor fill (white when there is none). Identical pairings are reported once.
func textContrast(roots []*design.Node) []TextContrast {
	type key struct {
		fg, bg string
		large  bool
	}
	seen := map[key]bool{}
	out := []TextContrast{}

	var visit func(n *design.Node, bg design.RGBA)
	visit = func(n *design.Node, bg design.RGBA) {
		if n == nil {
			return
		}

		if n.Type == design.TypeText {
			if fg, ok := firstSolid(n.Fills); ok {
				fg = blend(fg, bg)
				size, weight := extractor.DefaultFontSize, extractor.DefaultFontWeight
				if n.Style != nil {
					if n.Style.FontSize > 0 {
						size = n.Style.FontSize
					}
					if n.Style.FontWeight > 0 {
						weight = n.Style.FontWeight
					}
				}
				large := size >= 24 || (size >= 18.66 && weight >= 700)
				ratio := ContrastRatio(fg, bg)

				tc := TextContrast{
					NodeID:     n.ID,
					NodeName:   n.Name,
					Foreground: extractor.ColorToHex(&fg),
					Background: extractor.ColorToHex(&bg),
					FontSize:   size,
					Ratio:      round2(ratio),
					LargeText:  large,
					PassesAA:   ratio >= requiredRatio(large),
					PassesAAA:  ratio >= contrastAAA || (large && ratio >= contrastAA),
				}
				k := key{tc.Foreground, tc.Background, large}
				if !seen[k] {
					seen[k] = true
					out = append(out, tc)
				}
			}
			return
		}

		if fill, ok := firstSolid(n.Fills); ok && fill.A >= 0.999 {
			bg = fill
		}
		for _, child := range n.Children {
			visit(child, bg)
		}
	}

	white := design.RGBA{R: 1, G: 1, B: 1, A: 1}
	for _, root := range roots {
		visit(root, white)
	}
	return out
}

// firstSolid returns the first solid paint color with paint opacity folded into alpha.
func firstSolid(paints []design.Paint) (design.RGBA, bool) {
	for _, p := range paints {
		if p.Type != design.PaintSolid || p.Color == nil {
			continue
		}
		c := *p.Color
		if p.Opacity != nil {
			c.A *= *p.Opacity
		}
		return c, true
	}
	return design.RGBA{}, false
}

// blend composites a translucent foreground over an opaque background.
func blend(fg, bg design.RGBA) design.RGBA {
	a := math.Max(0, math.Min(1, fg.A))
	return design.RGBA{
		R: fg.R*a + bg.R*(1-a),
		G: fg.G*a + bg.G*(1-a),
		B: fg.B*a + bg.B*(1-a),
		A: 1,
	}
}

// RelativeLuminance is the WCAG 2.1 relative luminance of a normalized color.
func RelativeLuminance(c design.RGBA) float64 {
	lin := func(v float64) float64 {
		v = math.Max(0, math.Min(1, v))
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// ContrastRatio is the WCAG 2.1 contrast ratio of two colors, from 1 to 21.
func ContrastRatio(a, b design.RGBA) float64 {
	la, lb := RelativeLuminance(a), RelativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

func parseHex(hex string) (design.RGBA, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return design.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return design.RGBA{}, false
	}
	return design.RGBA{
		R: float64(v>>16&0xFF) / 255,
		G: float64(v>>8&0xFF) / 255,
		B: float64(v&0xFF) / 255,
		A: 1,
	}, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
