package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kataras/figma-docgen/pkg/tokens"
)

// TokensMarkdown renders the token set as a markdown reference with one table per token kind,
// followed by the CSS custom properties that implement it.
func TokensMarkdown(set *tokens.Set, fileName string) string {
	if set == nil {
		set = &tokens.Set{}
	}
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Design Tokens - %s\n\n", fileName))
	sb.WriteString("This document lists the design tokens extracted from the Figma file.\n\n")

	if set.Empty() {
		sb.WriteString("_No tokens were found._\n")
		return sb.String()
	}

	// Colors
	if len(set.Colors) > 0 {
		sb.WriteString("## Colors\n\n")
		sb.WriteString("| Token | Value | RGBA | Category |\n")
		sb.WriteString("|-------|-------|------|----------|\n")
		for _, c := range set.Colors {
			sb.WriteString(fmt.Sprintf("| `%s` | `%s` | `%s` | %s |\n", c.Name, c.Value, c.RGBA, c.Category))
		}
		sb.WriteString("\n")
	}

	// Typography
	if len(set.Typography) > 0 {
		sb.WriteString("## Typography\n\n")
		sb.WriteString("| Token | Font Family | Size | Weight | Line Height | Letter Spacing |\n")
		sb.WriteString("|-------|-------------|------|--------|-------------|----------------|\n")
		for _, t := range set.Typography {
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s | %g | %s | %s |\n",
				t.Name, cell(t.FontFamily), px(t.FontSize), t.FontWeight, num(t.LineHeight), px(t.LetterSpacing)))
		}
		sb.WriteString("\n")
	}

	// Spacing
	if len(set.Spacing) > 0 {
		sb.WriteString("## Spacing\n\n")
		sb.WriteString("| Token | Value |\n")
		sb.WriteString("|-------|-------|\n")
		for _, s := range set.Spacing {
			sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", s.Name, px(s.Value)))
		}
		sb.WriteString("\n")
	}

	// Border Radii
	if len(set.BorderRadius) > 0 {
		sb.WriteString("## Border Radius\n\n")
		sb.WriteString("| Token | Value |\n")
		sb.WriteString("|-------|-------|\n")
		for _, r := range set.BorderRadius {
			sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", r.Name, px(r.Value)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## CSS Variables\n\n")
	sb.WriteString("```css\n")
	sb.WriteString(CSSVariables(set))
	sb.WriteString("```\n")

	return sb.String()
}

// toKebabCase converts a string to kebab-case format (lowercase with hyphens).
// This is used for generating CSS variable names from Figma node names.
// Special characters are removed, and spaces/underscores are replaced with hyphens.
func toKebabCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")

	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// ToKebabCase is the exported form of the name sanitizer, shared with the preview exporter.
func ToKebabCase(s string) string {
	return toKebabCase(s)
}

// px formats a pixel value without trailing zeros: 16 -> "16px", 1.5 -> "1.5px".
func px(v float64) string {
	return num(v) + "px"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// cell escapes text for use inside a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
