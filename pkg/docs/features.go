package docs

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/kataras/figma-docgen/pkg/design"
)

const maxTextSamples = 5

var errStopWalk = errors.New("stop walk")

// Feature is one screen or flow of the design, one per top-level frame.
type Feature struct {
	Name        string   `json:"name"`
	FrameID     string   `json:"frameId"`
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Description string   `json:"description"`
	Components  []string `json:"components"`
	TextSamples []string `json:"textSamples"`
	UserStories []string `json:"userStories"`
}

// FeatureBreakdown lists the features of the design.
type FeatureBreakdown struct {
	Summary  string    `json:"summary"`
	Features []Feature `json:"features"`
}

const featuresPrompt = `You are a product manager turning a design into a feature breakdown.
Under "context" the input lists the top-level frames of a Figma page with the components and text they contain.
Return a JSON object with exactly these fields:
  "summary": a short paragraph describing the product,
  "features": an array of {"name": <frame name from the input>, "description": <what the screen lets the user do>,
                           "userStories": <array of "As a ..., I want ..., so that ..." sentences>}.
Keep the frame names unchanged. Return JSON only.`

type featuresAnswer struct {
	Summary  string `json:"summary"`
	Features []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		UserStories []string `json:"userStories"`
	} `json:"features"`
}

// FeatureBreakdown describes every top-level frame as a feature.
func (g *Generator) FeatureBreakdown(ctx context.Context, in Input) Result[FeatureBreakdown] {
	def := defaultFeatures(in)
	if len(def.Features) == 0 {
		return Result[FeatureBreakdown]{Value: def, Source: SourceDefault}
	}

	m, err := ask[featuresAnswer](ctx, g, featuresPrompt, newPromptInput(in, def.Features))
	if err != nil {
		return fallback(g, "features", def, err)
	}
	if m.Summary == "" {
		return fallback(g, "features", def, errIncomplete("summary"))
	}

	type enrichment struct {
		description string
		stories     []string
	}
	byName := make(map[string]enrichment, len(m.Features))
	for _, f := range m.Features {
		byName[strings.ToLower(f.Name)] = enrichment{f.Description, f.UserStories}
	}

	out := FeatureBreakdown{Summary: m.Summary, Features: make([]Feature, len(def.Features))}
	for i, f := range def.Features {
		if e, ok := byName[strings.ToLower(f.Name)]; ok {
			f.Description = orDefault(e.description, f.Description)
			f.UserStories = orDefaultList(e.stories, f.UserStories)
		}
		out.Features[i] = f
	}
	return model(out)
}

func defaultFeatures(in Input) FeatureBreakdown {
	fb := FeatureBreakdown{Features: []Feature{}}
	if err := design.Validate(in.Roots); err != nil {
		fb.Summary = "The design tree could not be read."
		return fb
	}

	for _, root := range in.Roots {
		if root == nil || !isFeatureFrame(root) {
			continue
		}

		f := Feature{
			Name:        root.Name,
			FrameID:     root.ID,
			Width:       design.Deref(root.Width),
			Height:      design.Deref(root.Height),
			Components:  []string{},
			TextSamples: textSamples(root, maxTextSamples),
			UserStories: []string{},
		}

		kinds := map[string]bool{}
		for _, c := range detectComponents(root.Children, 1) {
			if !kinds[c.Kind] {
				kinds[c.Kind] = true
				f.Components = append(f.Components, c.Kind)
			}
		}

		f.Description = "Screen " + strconv.Quote(root.Name)
		if len(f.Components) > 0 {
			f.Description += " with " + joinList(f.Components)
		}
		f.Description += "."
		fb.Features = append(fb.Features, f)
	}

	switch n := len(fb.Features); n {
	case 0:
		fb.Summary = "No top-level frames were found."
	default:
		names := make([]string, n)
		for i, f := range fb.Features {
			names[i] = f.Name
		}
		fb.Summary = "The design has " + plural(n, "one screen", strconv.Itoa(n)+" screens") + ": " + joinList(names) + "."
	}
	return fb
}

func isFeatureFrame(n *design.Node) bool {
	switch n.Type {
	case design.TypeFrame, design.TypeComponent, design.TypeComponentSet, "SECTION":
		return true
	}
	return false
}

// textSamples collects up to limit non-empty, distinct text contents in pre-order.
func textSamples(root *design.Node, limit int) []string {
	out := []string{}
	seen := map[string]bool{}
	_ = design.Walk([]*design.Node{root}, func(n *design.Node) error {
		if len(out) >= limit {
			return errStopWalk
		}
		if n.Type != design.TypeText {
			return nil
		}
		text := strings.Join(strings.Fields(n.Characters), " ")
		if text == "" || seen[text] {
			return nil
		}
		seen[text] = true
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		out = append(out, text)
		return nil
	})
	return out
}
