package design

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kataras/figma-docgen/pkg/figma"
)

// ErrPageNotFound is returned by PageRoots when no page has the requested name.
var ErrPageNotFound = errors.New("page not found")

// FromFigma converts a Figma API node and its subtree into the design model.
// Invisible paints and effects are dropped.
func FromFigma(n *figma.Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		ID:            n.ID,
		Name:          n.Name,
		Type:          n.Type,
		Characters:    n.Characters,
		LayoutMode:    n.LayoutMode,
		PaddingTop:    copyFloat(n.PaddingTop),
		PaddingRight:  copyFloat(n.PaddingRight),
		PaddingBottom: copyFloat(n.PaddingBottom),
		PaddingLeft:   copyFloat(n.PaddingLeft),
		ItemSpacing:   copyFloat(n.ItemSpacing),
		CornerRadius:  convertCornerRadius(n),
		Style:         convertTextStyle(n.Style),
	}

	if box := n.AbsoluteBoundingBox; box != nil {
		node.Width = Float(box.Width)
		node.Height = Float(box.Height)
		node.X = Float(box.X)
		node.Y = Float(box.Y)
	}

	node.Fills = convertPaints(n.Fills)
	node.Strokes = convertPaints(n.Strokes)
	for _, e := range n.Effects {
		if !e.IsVisible() {
			continue
		}
		node.Effects = append(node.Effects, Paint{Type: e.Type, Color: convertColor(e.Color)})
	}

	if len(n.Children) > 0 {
		node.Children = make([]*Node, 0, len(n.Children))
		for i := range n.Children {
			node.Children = append(node.Children, FromFigma(&n.Children[i]))
		}
	}

	return node
}

// PageRoots returns the top-level nodes of one page (CANVAS) of a document, converted.
// An empty page name selects the first page; the name match is case-insensitive.
// The resolved page name is returned alongside the roots.
func PageRoots(document *figma.Node, page string) ([]*Node, string, error) {
	if document == nil {
		return nil, "", fmt.Errorf("document is nil")
	}

	var canvas *figma.Node
	for i := range document.Children {
		c := &document.Children[i]
		if c.Type != TypeCanvas {
			continue
		}
		if page == "" || strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(page)) {
			canvas = c
			break
		}
	}

	if canvas == nil {
		if page != "" {
			return nil, "", fmt.Errorf("%w: %q", ErrPageNotFound, page)
		}
		// Not a full document (e.g. a single frame): analyze its children directly.
		return childRoots(document), document.Name, nil
	}

	return childRoots(canvas), canvas.Name, nil
}

// NodeRoots converts the documents of a nodes response, in the order of ids.
// Unknown ids and ids the API answered with null are skipped.
func NodeRoots(resp *figma.NodesResponse, ids []string) []*Node {
	if resp == nil {
		return nil
	}
	roots := make([]*Node, 0, len(ids))
	for _, id := range ids {
		data := resp.Nodes[id]
		if data == nil {
			continue
		}
		doc := data.Document
		roots = append(roots, FromFigma(&doc))
	}
	return roots
}

func childRoots(parent *figma.Node) []*Node {
	roots := make([]*Node, 0, len(parent.Children))
	for i := range parent.Children {
		roots = append(roots, FromFigma(&parent.Children[i]))
	}
	return roots
}

func convertPaints(paints []figma.Paint) []Paint {
	if len(paints) == 0 {
		return nil
	}
	out := make([]Paint, 0, len(paints))
	for _, p := range paints {
		if !p.IsVisible() {
			continue
		}
		out = append(out, Paint{
			Type:    p.Type,
			Color:   convertColor(p.Color),
			Opacity: copyFloat(p.Opacity),
		})
	}
	return out
}

func convertColor(c *figma.Color) *RGBA {
	if c == nil {
		return nil
	}
	return &RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func convertTextStyle(s *figma.TypeStyle) *TextStyle {
	if s == nil {
		return nil
	}
	style := &TextStyle{
		FontFamily: s.FontFamily,
		FontSize:   s.FontSize,
		FontWeight: s.FontWeight,
		TextCase:   s.TextCase,
		// Figma reports letter spacing in pixels.
		LetterSpacing: &Measure{Value: s.LetterSpacing},
	}

	switch strings.ToUpper(s.LineHeightUnit) {
	case "FONT_SIZE_%":
		if s.LineHeightPercentFontSize > 0 {
			style.LineHeight = &Measure{Value: s.LineHeightPercentFontSize, Unit: "PERCENT"}
		}
	case "INTRINSIC_%":
		if s.LineHeightPercent > 0 {
			style.LineHeight = &Measure{Value: s.LineHeightPercent, Unit: "PERCENT"}
		}
	default:
		if s.LineHeightPx > 0 {
			style.LineHeight = &Measure{Value: s.LineHeightPx}
		}
	}
	return style
}

func convertCornerRadius(n *figma.Node) *CornerRadius {
	if len(n.RectangleCornerRadii) == 4 {
		r := n.RectangleCornerRadii
		return Corners(r[0], r[1], r[2], r[3])
	}
	if n.CornerRadius != nil {
		return Uniform(*n.CornerRadius)
	}
	return nil
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
