package docs

import (
	"context"
	"fmt"
	"math"

	"github.com/kataras/figma-docgen/pkg/tokens"
)

// Analysis is a high-level summary of the design system.
type Analysis struct {
	Summary         string   `json:"summary"`
	DesignStyle     string   `json:"designStyle"`
	Observations    []string `json:"observations"`
	Recommendations []string `json:"recommendations"`
}

const analysisPrompt = `You are a senior product designer reviewing a design system extracted from a Figma file.
Using the tokens provided, return a JSON object with exactly these fields:
  "summary": a short paragraph describing the design system,
  "designStyle": two to five words naming the visual style,
  "observations": an array of concise observations,
  "recommendations": an array of concrete, actionable recommendations.
Only use facts present in the input. Return JSON only.`

// Analysis summarizes the design.
func (g *Generator) Analysis(ctx context.Context, in Input) Result[Analysis] {
	def := defaultAnalysis(in)

	m, err := ask[Analysis](ctx, g, analysisPrompt, newPromptInput(in, nil))
	if err != nil {
		return fallback(g, "analysis", def, err)
	}
	if m.Summary == "" {
		return fallback(g, "analysis", def, errIncomplete("summary"))
	}

	m.DesignStyle = orDefault(m.DesignStyle, def.DesignStyle)
	m.Observations = orDefaultList(m.Observations, def.Observations)
	m.Recommendations = orDefaultList(m.Recommendations, def.Recommendations)
	return model(m)
}

func defaultAnalysis(in Input) Analysis {
	set := tokenSet(in)
	name := orDefault(in.FileName, "The design")

	a := Analysis{
		Summary: fmt.Sprintf("%s contains %d layers and defines %d colors, %d text styles, %d spacing values and %d corner radii.",
			name, nodeCount(in), len(set.Colors), len(set.Typography), len(set.Spacing), len(set.BorderRadius)),
		DesignStyle:     designStyle(set),
		Observations:    []string{},
		Recommendations: []string{},
	}

	if len(set.Colors) > 0 {
		counts := map[string]int{}
		for _, c := range set.Colors {
			counts[c.Category]++
		}
		a.Observations = append(a.Observations, fmt.Sprintf("Palette: %d primary, %d secondary, %d semantic and %d neutral colors.",
			counts[tokens.CategoryPrimary], counts[tokens.CategorySecondary], counts[tokens.CategorySemantic], counts[tokens.CategoryNeutral]))
	}
	if families := fontFamilies(set.Typography); len(families) > 0 {
		a.Observations = append(a.Observations, fmt.Sprintf("Typography uses %d font %s: %s.",
			len(families), plural(len(families), "family", "families"), joinList(families)))
	}
	if len(set.Spacing) > 0 {
		a.Observations = append(a.Observations, fmt.Sprintf("Spacing ranges from %gpx to %gpx across %d steps.",
			set.Spacing[0].Value, set.Spacing[len(set.Spacing)-1].Value, len(set.Spacing)))
	}

	if len(set.Colors) > 12 {
		a.Recommendations = append(a.Recommendations, fmt.Sprintf("Consolidate the palette: %d distinct colors is more than most systems need.", len(set.Colors)))
	}
	if len(set.Typography) > 8 {
		a.Recommendations = append(a.Recommendations, fmt.Sprintf("Reduce the type scale: %d text styles are in use.", len(set.Typography)))
	}
	if off := offGrid(set.Spacing, 4); len(off) > 0 {
		a.Recommendations = append(a.Recommendations, fmt.Sprintf("Align spacing to a 4px grid; off-grid values: %s.", joinFloats(off)))
	}
	if len(set.Colors) == 0 && len(set.Typography) == 0 {
		a.Recommendations = append(a.Recommendations, "Select frames that contain styled content; no colors or text styles were found.")
	}
	return a
}

func designStyle(set *tokens.Set) string {
	if set.Empty() {
		return "undetermined"
	}

	shape := "sharp"
	if n := len(set.BorderRadius); n > 0 {
		switch largest := set.BorderRadius[n-1].Value; {
		case largest >= 16:
			shape = "rounded"
		case largest > 0:
			shape = "softly rounded"
		}
	}

	palette := "minimal"
	if len(set.Colors) > 8 {
		palette = "colorful"
	}
	return palette + ", " + shape
}

func offGrid(spacing []tokens.SpacingToken, grid float64) []float64 {
	var out []float64
	for _, s := range spacing {
		if math.Mod(s.Value, grid) != 0 {
			out = append(out, s.Value)
		}
	}
	return out
}
