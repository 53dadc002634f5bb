package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kataras/figma-docgen/pkg/tokens"
)

// CSSVariables renders the token set as CSS custom properties on :root.
// Token names that collide get a numeric suffix so every property is defined once.
func CSSVariables(set *tokens.Set) string {
	if set == nil {
		set = &tokens.Set{}
	}
	var sb strings.Builder
	names := newNamer()

	sb.WriteString(":root {\n")

	if len(set.Colors) > 0 {
		sb.WriteString("  /* Colors */\n")
		for _, c := range set.Colors {
			sb.WriteString(fmt.Sprintf("  --color-%s: %s;\n", names.unique("color", c.Name), c.Value))
		}
	}

	if len(set.Typography) > 0 {
		sb.WriteString("  /* Typography */\n")
		for _, t := range set.Typography {
			name := names.unique("font", t.Name)
			sb.WriteString(fmt.Sprintf("  --font-%s-family: '%s', system-ui, -apple-system, sans-serif;\n", name, t.FontFamily))
			sb.WriteString(fmt.Sprintf("  --font-%s-size: %s;\n", name, px(t.FontSize)))
			sb.WriteString(fmt.Sprintf("  --font-%s-weight: %g;\n", name, t.FontWeight))
			sb.WriteString(fmt.Sprintf("  --font-%s-line-height: %s;\n", name, px(t.LineHeight)))
			sb.WriteString(fmt.Sprintf("  --font-%s-letter-spacing: %s;\n", name, px(t.LetterSpacing)))
		}
	}

	if len(set.Spacing) > 0 {
		sb.WriteString("  /* Spacing */\n")
		for _, s := range set.Spacing {
			sb.WriteString(fmt.Sprintf("  --space-%s: %s;\n", names.unique("space", s.Name), px(s.Value)))
		}
	}

	if len(set.BorderRadius) > 0 {
		sb.WriteString("  /* Border Radius */\n")
		for _, r := range set.BorderRadius {
			sb.WriteString(fmt.Sprintf("  --radius-%s: %s;\n", names.unique("radius", r.Name), px(r.Value)))
		}
		sb.WriteString("  --radius-full: 9999px;\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

// TailwindConfig renders the token set as a Tailwind theme extension, as indented JSON.
// Keys are sorted by encoding/json, so the output is stable.
func TailwindConfig(set *tokens.Set) ([]byte, error) {
	if set == nil {
		set = &tokens.Set{}
	}
	names := newNamer()

	colors := map[string]string{}
	for _, c := range set.Colors {
		colors[names.unique("color", c.Name)] = c.Value
	}

	families := map[string][]string{}
	fontSizes := map[string]any{}
	for _, t := range set.Typography {
		families[toKebabCase(t.FontFamily)] = []string{t.FontFamily, "sans-serif"}
		fontSizes[names.unique("font", t.Name)] = []any{
			px(t.FontSize),
			map[string]string{
				"lineHeight":    px(t.LineHeight),
				"letterSpacing": px(t.LetterSpacing),
				"fontWeight":    num(t.FontWeight),
			},
		}
	}

	spacing := map[string]string{}
	for _, s := range set.Spacing {
		spacing[names.unique("space", s.Name)] = px(s.Value)
	}

	radius := map[string]string{}
	for _, r := range set.BorderRadius {
		radius[names.unique("radius", r.Name)] = px(r.Value)
	}

	config := map[string]any{
		"theme": map[string]any{
			"extend": map[string]any{
				"colors":       colors,
				"fontFamily":   families,
				"fontSize":     fontSizes,
				"spacing":      spacing,
				"borderRadius": radius,
			},
		},
	}

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tailwind config: %w", err)
	}
	return append(out, '\n'), nil
}

// namer hands out unique names per namespace: body-regular, body-regular-2, ...
type namer map[string]int

func newNamer() namer { return namer{} }

func (n namer) unique(namespace, name string) string {
	name = toKebabCase(name)
	if name == "" {
		name = "token"
	}
	key := namespace + "/" + name
	n[key]++
	if count := n[key]; count > 1 {
		return fmt.Sprintf("%s-%d", name, count)
	}
	return name
}
