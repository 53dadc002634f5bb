package docs

import (
	"context"
	"fmt"

	"github.com/kataras/figma-docgen/pkg/tokens"
)

// PaletteGroup is the colors of one category.
type PaletteGroup struct {
	Category string              `json:"category"`
	Colors   []tokens.ColorToken `json:"colors"`
}

// DesignKit is the style guide: tokens grouped for presentation plus guidance on using them.
// The token tables always come from the token set; only the prose may be written by the model.
type DesignKit struct {
	FileName     string                     `json:"fileName"`
	Introduction string                     `json:"introduction"`
	Guidelines   []string                   `json:"guidelines"`
	UsageNotes   []string                   `json:"usageNotes"`
	Palette      []PaletteGroup             `json:"palette"`
	FontFamilies []string                   `json:"fontFamilies"`
	Typography   []tokens.TypographyToken   `json:"typography"`
	Spacing      []tokens.SpacingToken      `json:"spacing"`
	BorderRadius []tokens.BorderRadiusToken `json:"borderRadius"`
}

// kitProse is the part of the kit the model is asked for.
type kitProse struct {
	Introduction string   `json:"introduction"`
	Guidelines   []string `json:"guidelines"`
	UsageNotes   []string `json:"usageNotes"`
}

const designKitPrompt = `You are a style guide editor turning the input design tokens into a design kit for designers
and developers. The token tables are rendered separately; write only the prose around them.
Return a JSON object with exactly these fields:
  "introduction": one paragraph introducing the visual language,
  "guidelines": an array of rules for when to use each color category, text style and spacing step,
  "usageNotes": an array of practical notes on applying the tokens in code (CSS custom properties, Tailwind).
Reference token names exactly as given. Return JSON only.`

var paletteOrder = []string{
	tokens.CategoryPrimary,
	tokens.CategorySecondary,
	tokens.CategorySemantic,
	tokens.CategoryNeutral,
}

// DesignKit builds the style guide. The model writes the introduction, guidelines and usage notes.
func (g *Generator) DesignKit(ctx context.Context, in Input) Result[DesignKit] {
	def := defaultDesignKit(in)

	m, err := ask[kitProse](ctx, g, designKitPrompt, newPromptInput(in, nil))
	if err != nil {
		return fallback(g, "designkit", def, err)
	}
	if len(m.Guidelines) == 0 {
		return fallback(g, "designkit", def, errIncomplete("guidelines"))
	}

	kit := def
	kit.Introduction = orDefault(m.Introduction, def.Introduction)
	kit.Guidelines = m.Guidelines
	kit.UsageNotes = orDefaultList(m.UsageNotes, def.UsageNotes)
	return model(kit)
}

func defaultDesignKit(in Input) DesignKit {
	set := tokenSet(in)

	kit := DesignKit{
		FileName:     in.FileName,
		Introduction: fmt.Sprintf("This kit collects the reusable styles of %s.", orDefault(in.FileName, "the design")),
		Guidelines:   []string{},
		Palette:      []PaletteGroup{},
		FontFamilies: fontFamilies(set.Typography),
		Typography:   set.Typography,
		Spacing:      set.Spacing,
		BorderRadius: set.BorderRadius,
		UsageNotes: []string{
			"Reference every value through its CSS custom property from tokens.css.",
			"Regenerate the tokens after changing styles in Figma instead of editing them by hand.",
		},
	}
	if kit.FontFamilies == nil {
		kit.FontFamilies = []string{}
	}

	for _, category := range paletteOrder {
		var group []tokens.ColorToken
		for _, c := range set.Colors {
			if c.Category == category {
				group = append(group, c)
			}
		}
		if len(group) > 0 {
			kit.Palette = append(kit.Palette, PaletteGroup{Category: category, Colors: group})
		}
	}

	for _, group := range kit.Palette {
		switch group.Category {
		case tokens.CategoryPrimary:
			kit.Guidelines = append(kit.Guidelines, "Reserve primary colors for main actions and emphasis.")
		case tokens.CategorySemantic:
			kit.Guidelines = append(kit.Guidelines, "Use semantic colors only to convey status.")
		case tokens.CategoryNeutral:
			kit.Guidelines = append(kit.Guidelines, "Use neutral colors for backgrounds, borders and body text.")
		}
	}
	if len(kit.Typography) > 0 {
		kit.Guidelines = append(kit.Guidelines, fmt.Sprintf("Pick text from the %d defined styles rather than setting sizes directly.", len(kit.Typography)))
	}
	if len(kit.Spacing) > 0 {
		kit.Guidelines = append(kit.Guidelines, fmt.Sprintf("Take padding and gaps from the spacing scale (%gpx to %gpx).",
			kit.Spacing[0].Value, kit.Spacing[len(kit.Spacing)-1].Value))
	}

	return kit
}
