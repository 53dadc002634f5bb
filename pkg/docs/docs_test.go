package docs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/kataras/figma-docgen/pkg/design"
	"github.com/kataras/figma-docgen/pkg/extractor"
	"github.com/kataras/figma-docgen/pkg/llm"
	"github.com/kataras/figma-docgen/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(hex string) []design.Paint {
	c, ok := parseHex(hex)
	if !ok {
		panic("bad hex " + hex)
	}
	return []design.Paint{{Type: design.PaintSolid, Color: &c}}
}

func textNode(id, name, chars, fill string, size float64) *design.Node {
	return &design.Node{
		ID: id, Name: name, Type: design.TypeText, Characters: chars,
		Fills: solid(fill),
		Style: &design.TextStyle{FontFamily: "Inter", FontSize: size, FontWeight: 400},
	}
}

// scenarioRoots is a two-screen page:
//
//	Home (black)      Title #333333, Primary Button x2 (white label), Card / Product
//	Settings          Caption #777777 at 10px, Toggle
func scenarioRoots() []*design.Node {
	return []*design.Node{
		{
			ID: "1:1", Name: "Home", Type: design.TypeFrame, Fills: solid("#000000"),
			Width: design.Float(375), Height: design.Float(812),
			Children: []*design.Node{
				textNode("1:2", "Title", "Welcome   back", "#333333", 16),
				{ID: "1:3", Name: "Primary Button", Type: design.TypeInstance, Children: []*design.Node{
					{ID: "1:4", Name: "Label", Type: design.TypeText, Characters: "Buy", Fills: solid("#FFFFFF")},
				}},
				{ID: "1:5", Name: "Card / Product", Type: design.TypeFrame, CornerRadius: design.Uniform(12)},
				{ID: "1:6", Name: "primary button", Type: design.TypeInstance},
			},
		},
		{
			ID: "2:1", Name: "Settings", Type: design.TypeFrame,
			Children: []*design.Node{
				textNode("2:2", "Caption", "Version 1.0", "#777777", 10),
				{ID: "2:3", Name: "Toggle", Type: design.TypeComponent},
			},
		},
	}
}

func scenarioInput(t *testing.T) Input {
	t.Helper()
	roots := scenarioRoots()
	res, err := extractor.Extract(roots)
	require.NoError(t, err)
	set, err := tokens.Synthesize(res)
	require.NoError(t, err)
	return Input{FileName: "Shop", Roots: roots, Extraction: res, Tokens: set}
}

type recordLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (l *recordLogger) Infof(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *recordLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

// scriptedClient answers each prompt with the first answer whose key appears in it.
type scriptedClient struct {
	answers map[string]string
	err     error

	mu      sync.Mutex
	prompts []string
}

func (c *scriptedClient) Name() string { return "scripted" }

func (c *scriptedClient) GenerateJSON(_ context.Context, prompt string, input any) (json.RawMessage, error) {
	if _, err := json.Marshal(input); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	for key, answer := range c.answers {
		if strings.Contains(prompt, key) {
			return json.RawMessage(answer), nil
		}
	}
	return json.RawMessage(`{}`), nil
}

func TestGenerateAllWithoutModel(t *testing.T) {
	in := scenarioInput(t)
	logger := &recordLogger{}
	g := &Generator{Logger: logger}

	b := g.GenerateAll(context.Background(), in)

	for name, src := range b.Sources() {
		assert.Equal(t, SourceDefault, src, name)
	}
	assert.ErrorIs(t, b.Analysis.Err, llm.ErrNotConfigured)
	assert.ErrorIs(t, b.SOP.Err, llm.ErrNotConfigured)
	assert.ErrorIs(t, b.DesignKit.Err, llm.ErrNotConfigured)
	assert.False(t, b.Analysis.Fallback(), "an unconfigured model is not a failure")
	assert.False(t, b.DesignKit.Fallback())

	assert.NotEmpty(t, b.Analysis.Value.Summary)
	assert.NotEmpty(t, b.SOP.Value.Steps)
	assert.Len(t, b.Features.Value.Features, 2)
	assert.Empty(t, logger.warns)
	assert.NotEmpty(t, logger.infos)
}

func TestGenerateAllWithModel(t *testing.T) {
	in := scenarioInput(t)
	client := &scriptedClient{answers: map[string]string{
		"senior product designer": `{"summary":"A dark storefront.","designStyle":"bold","observations":["high contrast"]}`,
		"accessibility specialist": "```json\n{\"summary\":\"Mostly fine.\",\"recommendations\":[\"Lighten the title.\"]}\n```",
		"design-system engineer":   `{"summary":"Three components.","components":[{"name":"Primary Button","description":"Main call to action."}]}`,
		"tech lead":                `{"title":"Shop SOP","steps":[{"title":"Install","instructions":["Import tokens.css."]}]}`,
		"product manager":          `{"summary":"A shop.","features":[{"name":"home","description":"Browse products.","userStories":["As a shopper, I want to browse, so that I can buy."]}]}`,
		"style guide editor":       `{"introduction":"A bold storefront kit.","guidelines":["Use primary-1 for the buy button."],"palette":[]}`,
	}}
	g := &Generator{LLM: llm.Static(client), Concurrency: 2}

	b := g.GenerateAll(context.Background(), in)

	assert.Equal(t, SourceModel, b.Analysis.Source)
	assert.Equal(t, "bold", b.Analysis.Value.DesignStyle)
	assert.Equal(t, []string{"high contrast"}, b.Analysis.Value.Observations)
	assert.NotNil(t, b.Analysis.Value.Recommendations, "missing lists fall back to the computed ones")

	assert.Equal(t, SourceModel, b.Accessibility.Source)
	assert.Equal(t, "Mostly fine.", b.Accessibility.Value.Summary)
	assert.Equal(t, 71, b.Accessibility.Value.Score, "the model never changes the measurements")

	require.Equal(t, SourceModel, b.Components.Source)
	assert.Equal(t, "Main call to action.", b.Components.Value.Components[0].Description)
	assert.Equal(t, "A card.", b.Components.Value.Components[1].Description)

	assert.Equal(t, SourceModel, b.SOP.Source)
	assert.Equal(t, "Shop SOP", b.SOP.Value.Title)
	assert.NotEmpty(t, b.SOP.Value.Checklist)

	require.Equal(t, SourceModel, b.DesignKit.Source)
	kit := b.DesignKit.Value
	assert.Equal(t, "A bold storefront kit.", kit.Introduction)
	assert.Equal(t, []string{"Use primary-1 for the buy button."}, kit.Guidelines)
	assert.Equal(t, defaultDesignKit(in).UsageNotes, kit.UsageNotes)
	assert.Equal(t, defaultDesignKit(in).Palette, kit.Palette, "the model never changes the token tables")
	assert.Equal(t, in.Tokens.Typography, kit.Typography)

	require.Equal(t, SourceModel, b.Features.Source)
	assert.Equal(t, "Browse products.", b.Features.Value.Features[0].Description, "names match case-insensitively")
	assert.Len(t, b.Features.Value.Features[0].UserStories, 1)
	assert.Equal(t, `Screen "Settings" with toggle.`, b.Features.Value.Features[1].Description)

	assert.Len(t, client.prompts, 6)
}

func TestModelFailureFallsBack(t *testing.T) {
	in := scenarioInput(t)
	boom := errors.New("quota exceeded")
	logger := &recordLogger{}
	g := &Generator{LLM: llm.Static(&scriptedClient{err: boom}), Logger: logger}

	r := g.Analysis(context.Background(), in)
	assert.Equal(t, SourceDefault, r.Source)
	assert.ErrorIs(t, r.Err, boom)
	assert.True(t, r.Fallback())
	assert.Equal(t, defaultAnalysis(in), r.Value)
	require.Len(t, logger.warns, 1)
	assert.Contains(t, logger.warns[0], "quota exceeded")
}

func TestModelInvalidAnswerFallsBack(t *testing.T) {
	in := scenarioInput(t)
	g := &Generator{LLM: llm.Static(&scriptedClient{answers: map[string]string{
		"senior product designer": `not json`,
		"tech lead":               `{"title":"No steps"}`,
	}})}

	a := g.Analysis(context.Background(), in)
	assert.Equal(t, SourceDefault, a.Source)
	assert.ErrorIs(t, a.Err, llm.ErrInvalidJSON)

	s := g.SOP(context.Background(), in)
	assert.Equal(t, SourceDefault, s.Source)
	assert.ErrorIs(t, s.Err, llm.ErrInvalidJSON)
	assert.Equal(t, defaultSOP(in), s.Value)
}

func TestDefaultAnalysis(t *testing.T) {
	in := Input{
		FileName:   "Kit",
		Extraction: &extractor.Result{NodeCount: 7},
		Tokens: &tokens.Set{
			Colors:       []tokens.ColorToken{{Name: "primary-1", Category: tokens.CategoryPrimary}},
			Typography:   []tokens.TypographyToken{{Name: "body-regular", FontFamily: "Inter"}, {Name: "heading-bold", FontFamily: "Roboto"}},
			Spacing:      []tokens.SpacingToken{{Value: 4}, {Value: 6}, {Value: 10}},
			BorderRadius: []tokens.BorderRadiusToken{{Value: 24}},
		},
	}

	a := defaultAnalysis(in)
	assert.Equal(t, "Kit contains 7 layers and defines 1 colors, 2 text styles, 3 spacing values and 1 corner radii.", a.Summary)
	assert.Equal(t, "minimal, rounded", a.DesignStyle)
	assert.Contains(t, a.Observations, "Typography uses 2 font families: Inter and Roboto.")
	assert.Contains(t, a.Observations, "Spacing ranges from 4px to 10px across 3 steps.")
	assert.Equal(t, []string{"Align spacing to a 4px grid; off-grid values: 6px, 10px."}, a.Recommendations)

	empty := defaultAnalysis(Input{})
	assert.Equal(t, "undetermined", empty.DesignStyle)
	assert.Len(t, empty.Recommendations, 1)
}

func TestDesignKitGroupsPalette(t *testing.T) {
	set := &tokens.Set{Colors: []tokens.ColorToken{
		{Name: "neutral-1-dark", Category: tokens.CategoryNeutral},
		{Name: "primary-2", Category: tokens.CategoryPrimary},
		{Name: "neutral-3-light", Category: tokens.CategoryNeutral},
	}}

	r := (&Generator{}).DesignKit(context.Background(), Input{FileName: "Kit", Tokens: set})
	assert.Equal(t, SourceDefault, r.Source)
	assert.ErrorIs(t, r.Err, llm.ErrNotConfigured)
	assert.Equal(t, "This kit collects the reusable styles of Kit.", r.Value.Introduction)
	assert.Equal(t, []string{
		"Reserve primary colors for main actions and emphasis.",
		"Use neutral colors for backgrounds, borders and body text.",
	}, r.Value.Guidelines)

	require.Len(t, r.Value.Palette, 2)
	assert.Equal(t, tokens.CategoryPrimary, r.Value.Palette[0].Category)
	assert.Equal(t, tokens.CategoryNeutral, r.Value.Palette[1].Category)
	assert.Len(t, r.Value.Palette[1].Colors, 2)
	assert.Equal(t, []string{}, r.Value.FontFamilies)
}

func TestDesignKitFallsBack(t *testing.T) {
	in := scenarioInput(t)
	boom := errors.New("quota exceeded")
	logger := &recordLogger{}

	r := (&Generator{LLM: llm.Static(&scriptedClient{err: boom}), Logger: logger}).DesignKit(context.Background(), in)
	assert.True(t, r.Fallback())
	assert.ErrorIs(t, r.Err, boom)
	assert.Equal(t, defaultDesignKit(in), r.Value)
	require.Len(t, logger.warns, 1)
	assert.Contains(t, logger.warns[0], "designkit")

	r = (&Generator{LLM: llm.Static(&scriptedClient{answers: map[string]string{
		"style guide editor": `{"introduction":"No rules."}`,
	}})}).DesignKit(context.Background(), in)
	assert.Equal(t, SourceDefault, r.Source)
	assert.ErrorIs(t, r.Err, llm.ErrInvalidJSON)
	assert.Equal(t, defaultDesignKit(in), r.Value)
}

func TestFeatureBreakdownDefaults(t *testing.T) {
	fb := defaultFeatures(scenarioInput(t))

	require.Len(t, fb.Features, 2)
	home := fb.Features[0]
	assert.Equal(t, "Home", home.Name)
	assert.Equal(t, "1:1", home.FrameID)
	assert.Equal(t, 375.0, home.Width)
	assert.Equal(t, []string{"button", "card"}, home.Components)
	assert.Equal(t, []string{"Welcome back", "Buy"}, home.TextSamples)
	assert.Equal(t, `Screen "Home" with button and card.`, home.Description)
	assert.Equal(t, "The design has 2 screens: Home and Settings.", fb.Summary)
}

func TestTextSamplesLimit(t *testing.T) {
	root := &design.Node{ID: "r", Type: design.TypeFrame}
	for i := 0; i < 10; i++ {
		root.Children = append(root.Children, &design.Node{ID: fmt.Sprint(i), Type: design.TypeText, Characters: fmt.Sprintf("text %d", i)})
	}
	root.Children = append(root.Children, &design.Node{ID: "long", Type: design.TypeText, Characters: strings.Repeat("é", 100)})

	assert.Equal(t, []string{"text 0", "text 1"}, textSamples(root, 2))

	long := textSamples(&design.Node{Children: root.Children[10:]}, 5)
	require.Len(t, long, 1)
	assert.Equal(t, strings.Repeat("é", 77)+"...", long[0])
}
