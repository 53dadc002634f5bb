package design

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/kataras/figma-docgen/pkg/figma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkPreOrder(t *testing.T) {
	roots := []*Node{
		{ID: "1", Children: []*Node{
			{ID: "1.1", Children: []*Node{{ID: "1.1.1"}}},
			nil,
			{ID: "1.2"},
		}},
		nil,
		{ID: "2"},
	}

	var got []string
	err := Walk(roots, func(n *Node) error {
		got = append(got, n.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1.1", "1.1.1", "1.2", "2"}, got)
}

func TestWalkDetectsCycle(t *testing.T) {
	parent := &Node{ID: "p", Name: "Parent"}
	child := &Node{ID: "c", Children: []*Node{parent}}
	parent.Children = []*Node{child}

	err := Walk([]*Node{parent}, func(*Node) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicStructure))
	assert.Contains(t, err.Error(), "cyclic structure")
}

func TestWalkDetectsSharedNode(t *testing.T) {
	shared := &Node{ID: "s"}
	roots := []*Node{
		{ID: "a", Children: []*Node{shared}},
		{ID: "b", Children: []*Node{shared}},
	}

	err := Walk(roots, func(*Node) error { return nil })
	assert.ErrorIs(t, err, ErrSharedNode)
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	visited := 0
	err := Walk([]*Node{{ID: "1", Children: []*Node{{ID: "2"}}}}, func(*Node) error {
		visited++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, visited)
}

func TestValidateRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		node *Node
	}{
		{"NaN color channel", &Node{Fills: []Paint{{Type: PaintSolid, Color: &RGBA{R: math.NaN(), A: 1}}}}},
		{"Inf opacity", &Node{Strokes: []Paint{{Type: PaintSolid, Opacity: Float(math.Inf(1))}}}},
		{"NaN font size", &Node{Style: &TextStyle{FontSize: math.NaN()}}},
		{"Inf line height", &Node{Style: &TextStyle{LineHeight: &Measure{Value: math.Inf(-1)}}}},
		{"NaN padding", &Node{PaddingLeft: Float(math.NaN())}},
		{"NaN item spacing", &Node{ItemSpacing: Float(math.NaN())}},
		{"Inf corner", &Node{CornerRadius: Corners(1, 2, math.Inf(1), 4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.node.ID = "9:9"
			err := Validate([]*Node{{ID: "root", Children: []*Node{tt.node}}})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNonFinite)
			assert.Contains(t, err.Error(), "9:9")
		})
	}
}

func TestValidateAcceptsSparseNodes(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]*Node{{ID: "1", Type: TypeFrame}, {ID: "2", Type: TypeText, Style: &TextStyle{}}}))
}

func TestCornerRadiusValues(t *testing.T) {
	var nilRadius *CornerRadius
	assert.Nil(t, nilRadius.Values())
	assert.Equal(t, []float64{6}, Uniform(6).Values())
	assert.Equal(t, []float64{1, 2, 3, 4}, Corners(1, 2, 3, 4).Values())
}

func TestFromFigma(t *testing.T) {
	hidden := false
	radius := 12.0
	spacing := 0.0
	src := figma.Node{
		ID:           "1:1",
		Name:         "Card",
		Type:         "FRAME",
		LayoutMode:   "VERTICAL",
		ItemSpacing:  &spacing,
		CornerRadius: &radius,

		AbsoluteBoundingBox: &figma.Rectangle{X: 10, Y: 20, Width: 300, Height: 200},
		Fills: []figma.Paint{
			{Type: "SOLID", Color: &figma.Color{R: 1, A: 1}},
			{Type: "SOLID", Visible: &hidden, Color: &figma.Color{G: 1, A: 1}},
		},
		Effects: []figma.Effect{{Type: "DROP_SHADOW", Color: &figma.Color{A: 0.25}}},
		Children: []figma.Node{
			{
				ID:         "1:2",
				Name:       "Title",
				Type:       "TEXT",
				Characters: "Hello",
				Style: &figma.TypeStyle{
					FontFamily: "Inter", FontSize: 24, FontWeight: 700,
					LineHeightPx: 32, LineHeightUnit: "PIXELS", LetterSpacing: -0.5, TextCase: "UPPER",
				},
			},
			{
				ID:                   "1:3",
				Name:                 "Chip",
				Type:                 "RECTANGLE",
				CornerRadius:         &radius,
				RectangleCornerRadii: []float64{4, 4, 0, 0},
				Style:                &figma.TypeStyle{FontSize: 12, LineHeightPercent: 120, LineHeightPercentFontSize: 150, LineHeightUnit: "FONT_SIZE_%"},
			},
		},
	}

	n := FromFigma(&src)
	require.NotNil(t, n)
	assert.Equal(t, "Card", n.Name)
	require.Len(t, n.Fills, 1, "invisible fills are dropped")
	assert.Equal(t, 1.0, n.Fills[0].Color.R)
	require.Len(t, n.Effects, 1)
	assert.Equal(t, 0.25, n.Effects[0].Color.A)
	require.NotNil(t, n.ItemSpacing)
	assert.Equal(t, 0.0, *n.ItemSpacing)
	assert.Nil(t, n.PaddingTop)
	assert.Equal(t, []float64{12}, n.CornerRadius.Values())
	assert.Equal(t, 300.0, *n.Width)

	require.Len(t, n.Children, 2)
	title := n.Children[0].Style
	require.NotNil(t, title)
	assert.Equal(t, &Measure{Value: 32}, title.LineHeight)
	assert.Equal(t, &Measure{Value: -0.5}, title.LetterSpacing)
	assert.Equal(t, "UPPER", title.TextCase)

	chip := n.Children[1]
	assert.Equal(t, []float64{4, 4, 0, 0}, chip.CornerRadius.Values(), "per-corner radii win over cornerRadius")
	assert.Equal(t, &Measure{Value: 150, Unit: "PERCENT"}, chip.Style.LineHeight)

	// The conversion must not alias the source's optional fields.
	*src.ItemSpacing = 8
	assert.Equal(t, 0.0, *n.ItemSpacing)
}

func TestLineHeightUnits(t *testing.T) {
	tests := []struct {
		name  string
		style figma.TypeStyle
		want  *Measure
	}{
		{"pixels", figma.TypeStyle{LineHeightPx: 24, LineHeightPercent: 100, LineHeightUnit: "PIXELS"}, &Measure{Value: 24}},
		{"font size percent", figma.TypeStyle{LineHeightPx: 18, LineHeightPercent: 110, LineHeightPercentFontSize: 150, LineHeightUnit: "FONT_SIZE_%"}, &Measure{Value: 150, Unit: "PERCENT"}},
		{"font size percent missing", figma.TypeStyle{LineHeightPercent: 110, LineHeightUnit: "FONT_SIZE_%"}, nil},
		{"intrinsic percent", figma.TypeStyle{LineHeightPercent: 110, LineHeightPercentFontSize: 150, LineHeightUnit: "INTRINSIC_%"}, &Measure{Value: 110, Unit: "PERCENT"}},
		{"no unit", figma.TypeStyle{LineHeightPx: 20}, &Measure{Value: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := FromFigma(&figma.Node{ID: "1", Type: "TEXT", Style: &tt.style})
			require.NotNil(t, n.Style)
			assert.Equal(t, tt.want, n.Style.LineHeight)
		})
	}
}

func TestPageRoots(t *testing.T) {
	doc := &figma.Node{
		ID: "0:0", Type: "DOCUMENT",
		Children: []figma.Node{
			{ID: "0:1", Name: "Cover", Type: "CANVAS", Children: []figma.Node{{ID: "1:1", Name: "Hero"}}},
			{ID: "0:2", Name: "Screens", Type: "CANVAS", Children: []figma.Node{{ID: "2:1", Name: "Home"}, {ID: "2:2", Name: "Settings"}}},
		},
	}

	roots, page, err := PageRoots(doc, "")
	require.NoError(t, err)
	assert.Equal(t, "Cover", page)
	require.Len(t, roots, 1)
	assert.Equal(t, "Hero", roots[0].Name)

	roots, page, err = PageRoots(doc, "screens")
	require.NoError(t, err)
	assert.Equal(t, "Screens", page)
	assert.Len(t, roots, 2)

	_, _, err = PageRoots(doc, "missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.EqualError(t, err, `page not found: "missing"`)
}

func TestNodeRootsKeepsRequestOrder(t *testing.T) {
	resp := &figma.NodesResponse{Nodes: map[string]*figma.NodeData{
		"1:1": {Document: figma.Node{ID: "1:1", Name: "A"}},
		"2:2": {Document: figma.Node{ID: "2:2", Name: "B"}},
		"3:3": nil,
	}}

	roots := NodeRoots(resp, []string{"2:2", "9:9", "3:3", "1:1"})
	require.Len(t, roots, 2)
	assert.Equal(t, "B", roots[0].Name)
	assert.Equal(t, "A", roots[1].Name)

	assert.Empty(t, NodeRoots(resp, []string{"3:3"}))
	assert.Nil(t, NodeRoots(nil, []string{"1:1"}))
}

func TestNodeRootsDecodesNullEntries(t *testing.T) {
	var resp figma.NodesResponse
	require.NoError(t, json.Unmarshal([]byte(`{"nodes":{"1:1":{"document":{"id":"1:1","name":"A","type":"FRAME"}},"4:4":null}}`), &resp))

	roots := NodeRoots(&resp, []string{"4:4", "1:1"})
	require.Len(t, roots, 1)
	assert.Equal(t, "A", roots[0].Name)
}
