package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kataras/figma-docgen/pkg/docs"
)

// AnalysisMarkdown renders the design analysis.
func AnalysisMarkdown(fileName string, r docs.Result[docs.Analysis]) string {
	a := r.Value
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Design Analysis - %s\n\n", fileName))
	sb.WriteString(a.Summary + "\n\n")
	if a.DesignStyle != "" {
		sb.WriteString(fmt.Sprintf("**Design style:** %s\n\n", a.DesignStyle))
	}
	writeList(&sb, "Observations", a.Observations)
	writeList(&sb, "Recommendations", a.Recommendations)
	writeSource(&sb, r.Source)

	return sb.String()
}

// AccessibilityMarkdown renders the accessibility report.
func AccessibilityMarkdown(fileName string, r docs.Result[docs.Accessibility]) string {
	a := r.Value
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Accessibility Report - %s\n\n", fileName))
	sb.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", a.Score))
	sb.WriteString(a.Summary + "\n\n")

	if len(a.Issues) > 0 {
		sb.WriteString("## Issues\n\n")
		sb.WriteString("| Severity | Issue | Node |\n")
		sb.WriteString("|----------|-------|------|\n")
		for _, issue := range a.Issues {
			node := "-"
			if issue.NodeID != "" {
				node = fmt.Sprintf("`%s`", issue.NodeID)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", severityLabel(issue.Severity), cell(issue.Message), node))
		}
		sb.WriteString("\n")
	}

	if len(a.Text) > 0 {
		sb.WriteString("## Text Contrast\n\n")
		sb.WriteString("| Layer | Foreground | Background | Size | Ratio | AA | AAA |\n")
		sb.WriteString("|-------|------------|------------|------|-------|----|-----|\n")
		for _, tc := range a.Text {
			sb.WriteString(fmt.Sprintf("| %s | `%s` | `%s` | %s | %.2f:1 | %s | %s |\n",
				cell(tc.NodeName), tc.Foreground, tc.Background, px(tc.FontSize), tc.Ratio, check(tc.PassesAA), check(tc.PassesAAA)))
		}
		sb.WriteString("\n")
	}

	if len(a.Palette) > 0 {
		sb.WriteString("## Palette Contrast\n\n")
		sb.WriteString("| Token | Value | On White | On Black | Best On |\n")
		sb.WriteString("|-------|-------|----------|----------|---------|\n")
		for _, c := range a.Palette {
			sb.WriteString(fmt.Sprintf("| `%s` | `%s` | %.2f:1 | %.2f:1 | %s |\n", c.Token, c.Hex, c.OnWhite, c.OnBlack, c.BestOn))
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Recommendations", a.Recommendations)
	writeSource(&sb, r.Source)

	return sb.String()
}

// ComponentsMarkdown renders the component inventory.
func ComponentsMarkdown(fileName string, r docs.Result[docs.ComponentReport]) string {
	c := r.Value
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Components - %s\n\n", fileName))
	sb.WriteString(c.Summary + "\n\n")

	if len(c.Counts) > 0 {
		kinds := make([]string, 0, len(c.Counts))
		for kind := range c.Counts {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)

		sb.WriteString("## By Kind\n\n")
		for _, kind := range kinds {
			sb.WriteString(fmt.Sprintf("- **%s**: %d\n", kind, c.Counts[kind]))
		}
		sb.WriteString("\n")
	}

	if len(c.Components) > 0 {
		sb.WriteString("## Inventory\n\n")
		for _, comp := range c.Components {
			sb.WriteString(fmt.Sprintf("### %s\n\n", comp.Name))
			sb.WriteString(fmt.Sprintf("- Kind: %s\n", comp.Kind))
			sb.WriteString(fmt.Sprintf("- Figma type: `%s`\n", comp.FigmaType))
			sb.WriteString(fmt.Sprintf("- Node: `%s`\n", comp.NodeID))
			sb.WriteString(fmt.Sprintf("- Occurrences: %d\n\n", comp.Occurrences))
			if comp.Description != "" {
				sb.WriteString(comp.Description + "\n\n")
			}
		}
	}

	writeSource(&sb, r.Source)
	return sb.String()
}

// FeaturesMarkdown renders the feature breakdown.
func FeaturesMarkdown(fileName string, r docs.Result[docs.FeatureBreakdown]) string {
	f := r.Value
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Features - %s\n\n", fileName))
	sb.WriteString(f.Summary + "\n\n")

	for _, feature := range f.Features {
		sb.WriteString(fmt.Sprintf("## %s\n\n", feature.Name))
		if feature.Width > 0 && feature.Height > 0 {
			sb.WriteString(fmt.Sprintf("_Frame `%s`, %gx%g_\n\n", feature.FrameID, feature.Width, feature.Height))
		} else {
			sb.WriteString(fmt.Sprintf("_Frame `%s`_\n\n", feature.FrameID))
		}
		if feature.Description != "" {
			sb.WriteString(feature.Description + "\n\n")
		}
		if len(feature.Components) > 0 {
			sb.WriteString(fmt.Sprintf("**Components:** %s\n\n", strings.Join(feature.Components, ", ")))
		}
		if len(feature.TextSamples) > 0 {
			sb.WriteString("**Copy:**\n\n")
			for _, sample := range feature.TextSamples {
				sb.WriteString(fmt.Sprintf("> %s\n", sample))
			}
			sb.WriteString("\n")
		}
		writeSubList(&sb, "User stories", feature.UserStories)
	}

	writeSource(&sb, r.Source)
	return sb.String()
}

// SOPMarkdown renders the implementation procedure as numbered steps and a checklist.
func SOPMarkdown(r docs.Result[docs.SOP]) string {
	s := r.Value
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", s.Title))
	if s.Purpose != "" {
		sb.WriteString("## Purpose\n\n")
		sb.WriteString(s.Purpose + "\n\n")
	}

	if len(s.Steps) > 0 {
		sb.WriteString("## Procedure\n\n")
		for i, step := range s.Steps {
			sb.WriteString(fmt.Sprintf("### %d. %s\n\n", i+1, step.Title))
			for _, instruction := range step.Instructions {
				sb.WriteString(fmt.Sprintf("- %s\n", instruction))
			}
			sb.WriteString("\n")
		}
	}

	if len(s.Checklist) > 0 {
		sb.WriteString("## Checklist\n\n")
		for _, item := range s.Checklist {
			sb.WriteString(fmt.Sprintf("- [ ] %s\n", item))
		}
		sb.WriteString("\n")
	}

	writeSource(&sb, r.Source)
	return sb.String()
}

// DesignKitMarkdown renders the style guide.
func DesignKitMarkdown(r docs.Result[docs.DesignKit]) string {
	k := r.Value
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Design Kit - %s\n\n", k.FileName))

	if k.Introduction != "" {
		sb.WriteString(k.Introduction + "\n\n")
	}
	writeList(&sb, "Guidelines", k.Guidelines)

	if len(k.Palette) > 0 {
		sb.WriteString("## Palette\n\n")
		for _, group := range k.Palette {
			sb.WriteString(fmt.Sprintf("### %s\n\n", titleCase(group.Category)))
			for _, c := range group.Colors {
				sb.WriteString(fmt.Sprintf("- `%s` %s (`var(--color-%s)`)\n", c.Value, c.Name, toKebabCase(c.Name)))
			}
			sb.WriteString("\n")
		}
	}

	if len(k.Typography) > 0 {
		sb.WriteString("## Typography\n\n")
		if len(k.FontFamilies) > 0 {
			sb.WriteString(fmt.Sprintf("Font families: %s\n\n", strings.Join(k.FontFamilies, ", ")))
		}
		sb.WriteString("| Style | Font | Size / Line Height | Weight |\n")
		sb.WriteString("|-------|------|--------------------|--------|\n")
		for _, t := range k.Typography {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s / %s | %g |\n", t.Name, cell(t.FontFamily), px(t.FontSize), px(t.LineHeight), t.FontWeight))
		}
		sb.WriteString("\n")
	}

	if len(k.Spacing) > 0 {
		sb.WriteString("## Spacing Scale\n\n")
		for _, s := range k.Spacing {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", s.Name, px(s.Value)))
		}
		sb.WriteString("\n")
	}

	if len(k.BorderRadius) > 0 {
		sb.WriteString("## Corner Radius\n\n")
		for _, r := range k.BorderRadius {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", r.Name, px(r.Value)))
		}
		sb.WriteString("\n")
	}

	if len(k.Palette) == 0 && len(k.Typography) == 0 && len(k.Spacing) == 0 && len(k.BorderRadius) == 0 {
		sb.WriteString("_The file defines no reusable styles._\n\n")
	}

	writeList(&sb, "Usage Notes", k.UsageNotes)
	writeSource(&sb, r.Source)
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString("\n")
}

func writeSubList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("**%s:**\n\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString("\n")
}

// writeSource notes documents built without the language model.
func writeSource(sb *strings.Builder, source docs.Source) {
	if source == docs.SourceDefault {
		sb.WriteString("---\n\n_Generated from the extracted design data without a language model._\n")
	}
}

func severityLabel(severity string) string {
	switch severity {
	case docs.SeverityError:
		return "Error"
	case docs.SeverityWarning:
		return "Warning"
	default:
		return "Info"
	}
}

func check(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
