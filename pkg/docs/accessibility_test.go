package docs

import (
	"testing"

	"github.com/kataras/figma-docgen/pkg/design"
	"github.com/kataras/figma-docgen/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContrastRatio(t *testing.T) {
	white := design.RGBA{R: 1, G: 1, B: 1, A: 1}
	black := design.RGBA{A: 1}
	gray, _ := parseHex("#777777")

	assert.InDelta(t, 21.0, ContrastRatio(white, black), 1e-9)
	assert.InDelta(t, 21.0, ContrastRatio(black, white), 1e-9, "order does not matter")
	assert.InDelta(t, 1.0, ContrastRatio(gray, gray), 1e-9)
	assert.InDelta(t, 4.48, ContrastRatio(gray, white), 0.01)
}

func TestParseHex(t *testing.T) {
	c, ok := parseHex("#3B82F6")
	require.True(t, ok)
	assert.InDelta(t, 0x3B/255.0, c.R, 1e-9)
	assert.InDelta(t, 0x82/255.0, c.G, 1e-9)
	assert.InDelta(t, 0xF6/255.0, c.B, 1e-9)

	for _, bad := range []string{"", "#FFF", "#GGGGGG", "#1234567"} {
		_, ok := parseHex(bad)
		assert.False(t, ok, bad)
	}
}

func TestBlend(t *testing.T) {
	got := blend(design.RGBA{A: 0.5}, design.RGBA{R: 1, G: 1, B: 1, A: 1})
	assert.Equal(t, design.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1}, got)
}

func TestTextContrast(t *testing.T) {
	got := textContrast(scenarioRoots())
	require.Len(t, got, 3)

	title := got[0]
	assert.Equal(t, "1:2", title.NodeID)
	assert.Equal(t, "#333333", title.Foreground)
	assert.Equal(t, "#000000", title.Background, "the frame fill is the background")
	assert.False(t, title.PassesAA)

	label := got[1]
	assert.Equal(t, "#FFFFFF", label.Foreground)
	assert.Equal(t, 21.0, label.Ratio)
	assert.Equal(t, 16.0, label.FontSize, "missing style uses the default size")
	assert.True(t, label.PassesAAA)

	caption := got[2]
	assert.Equal(t, "#FFFFFF", caption.Background, "no ancestor fill means white")
	assert.Equal(t, 4.48, caption.Ratio)
	assert.False(t, caption.PassesAA)
}

func TestTextContrastLargeText(t *testing.T) {
	roots := []*design.Node{{ID: "f", Type: design.TypeFrame, Children: []*design.Node{
		textNode("t1", "Big", "Hello", "#777777", 24),
		textNode("t2", "Big again", "Hello", "#777777", 32),
	}}}

	got := textContrast(roots)
	require.Len(t, got, 1, "identical pairings are reported once")
	assert.True(t, got[0].LargeText)
	assert.True(t, got[0].PassesAA)
	assert.False(t, got[0].PassesAAA)
}

func TestTextContrastTranslucentBackgroundIgnored(t *testing.T) {
	half := 0.5
	black := design.RGBA{A: 1}
	roots := []*design.Node{{
		ID:    "f",
		Fills: []design.Paint{{Type: design.PaintSolid, Color: &black, Opacity: &half}},
		Children: []*design.Node{
			textNode("t", "Text", "x", "#000000", 16),
		},
	}}

	got := textContrast(roots)
	require.Len(t, got, 1)
	assert.Equal(t, "#FFFFFF", got[0].Background)
	assert.True(t, got[0].PassesAA)
}

func TestDefaultAccessibility(t *testing.T) {
	a := defaultAccessibility(scenarioInput(t))

	assert.Equal(t, 71, a.Score)
	require.Len(t, a.Issues, 3)
	assert.Equal(t, SeverityError, a.Issues[0].Severity)
	assert.Equal(t, "1:2", a.Issues[0].NodeID)
	assert.Equal(t, SeverityWarning, a.Issues[1].Severity)
	assert.Equal(t, SeverityWarning, a.Issues[2].Severity)
	assert.Contains(t, a.Issues[2].Message, "caption-regular")
	assert.Len(t, a.Recommendations, 2)
	assert.Equal(t, "Checked 3 text color pairings and 4 palette colors: 1 errors and 2 warnings. Score 71/100.", a.Summary)

	require.Len(t, a.Palette, 4)
	assert.Equal(t, "#000000", a.Palette[0].Hex)
	assert.Equal(t, "white", a.Palette[0].BestOn)
	assert.Equal(t, 21.0, a.Palette[0].OnWhite)
}

func TestDefaultAccessibilityLightSmallText(t *testing.T) {
	a := defaultAccessibility(Input{Tokens: &tokens.Set{Typography: []tokens.TypographyToken{
		{Name: "body-small-regular", FontFamily: "Inter", FontSize: 14, FontWeight: 200},
	}}})

	require.Len(t, a.Issues, 1)
	assert.Equal(t, SeverityInfo, a.Issues[0].Severity)
	assert.Equal(t, 98, a.Score)
	assert.Empty(t, a.Text)
	assert.NotNil(t, a.Text)
}

func TestScoreFloorsAtZero(t *testing.T) {
	issues := make([]Issue, 10)
	for i := range issues {
		issues[i].Severity = SeverityError
	}
	assert.Equal(t, 0, score(issues))
	assert.Equal(t, 100, score(nil))
}
