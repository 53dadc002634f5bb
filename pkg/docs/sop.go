package docs

import (
	"context"
	"fmt"

	"github.com/kataras/figma-docgen/pkg/tokens"
)

// SOPStep is one step of the implementation procedure.
type SOPStep struct {
	Title        string   `json:"title"`
	Instructions []string `json:"instructions"`
}

// SOP is the standard operating procedure for implementing the design system in code.
type SOP struct {
	Title     string    `json:"title"`
	Purpose   string    `json:"purpose"`
	Steps     []SOPStep `json:"steps"`
	Checklist []string  `json:"checklist"`
}

const sopPrompt = `You are a tech lead writing a standard operating procedure (SOP) for engineers who will implement
the design system described by the input tokens. The generated artifacts are tokens.css (CSS custom properties),
tailwind.config.json and tokens.json. Return a JSON object with exactly these fields:
  "title": the SOP title,
  "purpose": one paragraph,
  "steps": an array of {"title": <step title>, "instructions": <array of imperative sentences>},
  "checklist": an array of review items.
Reference token names exactly as given. Return JSON only.`

// SOP writes the implementation procedure.
func (g *Generator) SOP(ctx context.Context, in Input) Result[SOP] {
	def := defaultSOP(in)

	m, err := ask[SOP](ctx, g, sopPrompt, newPromptInput(in, nil))
	if err != nil {
		return fallback(g, "sop", def, err)
	}
	if len(m.Steps) == 0 {
		return fallback(g, "sop", def, errIncomplete("steps"))
	}

	m.Title = orDefault(m.Title, def.Title)
	m.Purpose = orDefault(m.Purpose, def.Purpose)
	m.Checklist = orDefaultList(m.Checklist, def.Checklist)
	return model(m)
}

func defaultSOP(in Input) SOP {
	set := tokenSet(in)
	name := orDefault(in.FileName, "the design")

	s := SOP{
		Title:   "Implementing the " + orDefault(in.FileName, "Design") + " design system",
		Purpose: fmt.Sprintf("This procedure describes how to bring the tokens extracted from %s into a codebase and keep them consistent.", name),
	}

	s.Steps = append(s.Steps, SOPStep{
		Title: "Install the design tokens",
		Instructions: []string{
			"Import tokens.css in the global stylesheet so every CSS custom property is available.",
			"Merge tailwind.config.json into the Tailwind theme under theme.extend.",
			"Keep tokens.json under version control as the source of truth; regenerate instead of editing by hand.",
		},
	})

	if len(set.Colors) > 0 {
		step := SOPStep{Title: "Apply the color palette"}
		for _, c := range set.Colors {
			if c.Category == tokens.CategoryPrimary {
				step.Instructions = append(step.Instructions, fmt.Sprintf("Use --color-%s (%s) for primary actions and emphasis.", c.Name, c.Value))
				break
			}
		}
		step.Instructions = append(step.Instructions,
			"Reference colors only through their custom properties; never hard-code hex values.",
			"Use neutral tokens for backgrounds, borders and body text.")
		s.Steps = append(s.Steps, step)
	}

	if len(set.Typography) > 0 {
		step := SOPStep{Title: "Set up typography"}
		step.Instructions = append(step.Instructions, fmt.Sprintf("Load the font %s: %s.",
			plural(len(fontFamilies(set.Typography)), "family", "families"), joinList(fontFamilies(set.Typography))))
		for _, t := range set.Typography {
			step.Instructions = append(step.Instructions, fmt.Sprintf("Map %s to %s %gpx / weight %g.", t.Name, t.FontFamily, t.FontSize, t.FontWeight))
		}
		s.Steps = append(s.Steps, step)
	}

	if len(set.Spacing) > 0 || len(set.BorderRadius) > 0 {
		step := SOPStep{Title: "Use the spacing and radius scales"}
		if len(set.Spacing) > 0 {
			step.Instructions = append(step.Instructions, fmt.Sprintf("Take padding, margins and gaps from the %d spacing tokens (--space-*).", len(set.Spacing)))
		}
		if len(set.BorderRadius) > 0 {
			step.Instructions = append(step.Instructions, fmt.Sprintf("Take corner radii from the %d radius tokens (--radius-*).", len(set.BorderRadius)))
		}
		s.Steps = append(s.Steps, step)
	}

	s.Steps = append(s.Steps, SOPStep{
		Title: "Review",
		Instructions: []string{
			"Compare each implemented screen with the Figma frame it comes from.",
			"Resolve every error in accessibility.md before release.",
		},
	})

	s.Checklist = []string{
		"No hard-coded colors, font sizes or spacing values remain.",
		"Text contrast meets WCAG AA.",
		"New design values were added to Figma first and the tokens regenerated.",
	}
	return s
}
