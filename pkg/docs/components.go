package docs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/kataras/figma-docgen/pkg/design"
)

// Component is one detected UI component, grouped by kind and name.
type Component struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	FigmaType   string `json:"figmaType"`
	NodeID      string `json:"nodeId"`
	Occurrences int    `json:"occurrences"`
	Description string `json:"description"`
}

// ComponentReport is the component inventory.
type ComponentReport struct {
	Summary    string         `json:"summary"`
	Components []Component    `json:"components"`
	Counts     map[string]int `json:"counts"`
}

// KindOther is used for Figma components whose name matches no known kind.
const KindOther = "component"

// componentKinds maps name keywords to component kinds. The first match wins.
var componentKinds = []struct {
	kind     string
	keywords []string
}{
	{"button", []string{"button", "btn", "cta"}},
	{"input", []string{"input", "textfield", "text field", "search", "textarea"}},
	{"checkbox", []string{"checkbox", "check box"}},
	{"toggle", []string{"toggle", "switch"}},
	{"dropdown", []string{"dropdown", "select", "menu"}},
	{"card", []string{"card", "tile"}},
	{"navigation", []string{"nav", "navbar", "sidebar", "breadcrumb"}},
	{"modal", []string{"modal", "dialog", "popup", "sheet"}},
	{"avatar", []string{"avatar", "profile pic"}},
	{"badge", []string{"badge", "chip", "tag", "pill"}},
	{"icon", []string{"icon"}},
	{"header", []string{"header", "app bar", "topbar", "top bar"}},
	{"footer", []string{"footer", "bottom bar"}},
	{"tab", []string{"tab"}},
	{"list", []string{"list", "item", "row"}},
}

const componentsPrompt = `You are a design-system engineer. The input contains design tokens and, under "context",
the UI components detected in a Figma file (name, kind, occurrences).
Return a JSON object with exactly these fields:
  "summary": a short paragraph describing the component library,
  "components": an array of {"name": <name from the input>, "description": <one sentence on purpose and usage>}.
Do not invent components that are not in the input. Return JSON only.`

type componentsAnswer struct {
	Summary    string `json:"summary"`
	Components []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"components"`
}

// Components detects UI components and asks the model to describe them.
func (g *Generator) Components(ctx context.Context, in Input) Result[ComponentReport] {
	def := defaultComponents(in)
	if len(def.Components) == 0 {
		return Result[ComponentReport]{Value: def, Source: SourceDefault}
	}

	m, err := ask[componentsAnswer](ctx, g, componentsPrompt, newPromptInput(in, def.Components))
	if err != nil {
		return fallback(g, "components", def, err)
	}
	if m.Summary == "" {
		return fallback(g, "components", def, errIncomplete("summary"))
	}

	descriptions := make(map[string]string, len(m.Components))
	for _, c := range m.Components {
		if c.Description != "" {
			descriptions[strings.ToLower(c.Name)] = c.Description
		}
	}

	out := def
	out.Summary = m.Summary
	out.Components = make([]Component, len(def.Components))
	for i, c := range def.Components {
		if d, ok := descriptions[strings.ToLower(c.Name)]; ok {
			c.Description = d
		}
		out.Components[i] = c
	}
	return model(out)
}

func defaultComponents(in Input) ComponentReport {
	r := ComponentReport{
		Components: DetectComponents(in.Roots),
		Counts:     map[string]int{},
	}
	for _, c := range r.Components {
		r.Counts[c.Kind] += c.Occurrences
	}

	if len(r.Components) == 0 {
		r.Summary = "No components were detected."
		return r
	}

	kinds := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%d %s", r.Counts[k], k)
	}
	r.Summary = fmt.Sprintf("Detected %d distinct %s: %s.",
		len(r.Components), plural(len(r.Components), "component", "components"), joinList(parts))
	return r
}

// DetectComponents lists Figma components, component sets and instances, plus frames and groups
// whose names match a known component kind. Entries are grouped by (kind, name) in pre-order of
// first appearance. Children of a detected component are not inspected, and top-level frames
// are treated as screens rather than components. A malformed tree yields no components.
func DetectComponents(roots []*design.Node) []Component {
	return detectComponents(roots, 0)
}

func detectComponents(roots []*design.Node, startDepth int) []Component {
	if err := design.Validate(roots); err != nil {
		return []Component{}
	}

	type key struct{ kind, name string }
	index := map[key]int{}
	out := []Component{}

	var visit func(n *design.Node, depth int)
	visit = func(n *design.Node, depth int) {
		if n == nil {
			return
		}

		kind, ok := classifyComponent(n, depth == 0)
		if ok {
			k := key{kind, strings.ToLower(strings.TrimSpace(n.Name))}
			if i, seen := index[k]; seen {
				out[i].Occurrences++
			} else {
				index[k] = len(out)
				out = append(out, Component{
					Name:        n.Name,
					Kind:        kind,
					FigmaType:   n.Type,
					NodeID:      n.ID,
					Occurrences: 1,
					Description: fmt.Sprintf("%s %s.", articleFor(kind), kind),
				})
			}
			return
		}

		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}

	for _, root := range roots {
		visit(root, startDepth)
	}
	return out
}

func classifyComponent(n *design.Node, topLevel bool) (string, bool) {
	kind := kindFromName(n.Name)
	switch n.Type {
	case design.TypeComponent, design.TypeComponentSet, design.TypeInstance:
		if kind == "" {
			kind = KindOther
		}
		return kind, true
	case design.TypeFrame, design.TypeGroup:
		return kind, kind != "" && !topLevel
	default:
		return "", false
	}
}

// kindFromName matches keywords against word starts, so "Primary Buttons" is a button
// and "Arrow" is not a list row.
func kindFromName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	normalized := " " + strings.Join(words, " ")
	for _, ck := range componentKinds {
		for _, kw := range ck.keywords {
			if strings.Contains(normalized, " "+kw) {
				return ck.kind
			}
		}
	}
	return ""
}

func articleFor(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "An"
	}
	return "A"
}
