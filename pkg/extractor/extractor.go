// Package extractor walks a design-node forest and collects the raw values that design tokens
// are made of: text styles, solid colors, auto-layout settings, spacing and corner radii.
//
// Every extraction visits each node once, pre-order, and is a pure function of its input.
// Extract runs all of them in one traversal.
// Missing optional fields contribute nothing. The only errors are defects of the forest:
// cycles, shared nodes and non-finite numbers (see design.CheckFinite).
package extractor

import (
	"fmt"
	"math"
	"sort"

	"github.com/kataras/figma-docgen/pkg/design"
)

// Defaults applied to text styles that omit a field.
const (
	DefaultFontFamily = "Inter"
	DefaultFontSize   = 16.0
	DefaultFontWeight = 400.0
)

// ParsedColor is a unique solid color. Hex is the dedup key; Alpha is the first-seen alpha.
type ParsedColor struct {
	Hex   string  `json:"hex"`
	R     float64 `json:"r"`
	G     float64 `json:"g"`
	B     float64 `json:"b"`
	Alpha float64 `json:"alpha"`
	RGBA  string  `json:"rgba"`
}

// ParsedTextStyle is a unique (family, size, weight) text style with first-seen metrics.
type ParsedTextStyle struct {
	NodeID        string  `json:"nodeId"`
	NodeName      string  `json:"nodeName"`
	FontFamily    string  `json:"fontFamily"`
	FontSize      float64 `json:"fontSize"`
	FontWeight    float64 `json:"fontWeight"`
	LineHeight    float64 `json:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing"`
	TextCase      string  `json:"textCase,omitempty"`
}

// ParsedAutoLayout records the auto-layout settings of one node.
type ParsedAutoLayout struct {
	NodeID        string  `json:"nodeId"`
	NodeName      string  `json:"nodeName"`
	Direction     string  `json:"direction"`
	PaddingTop    float64 `json:"paddingTop"`
	PaddingRight  float64 `json:"paddingRight"`
	PaddingBottom float64 `json:"paddingBottom"`
	PaddingLeft   float64 `json:"paddingLeft"`
	ItemSpacing   float64 `json:"itemSpacing"`
}

// Padding holds the four padding sides of a node.
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// ParsedSpacing records the padding and gap of one node. Either may be nil, not both.
type ParsedSpacing struct {
	NodeID   string   `json:"nodeId"`
	NodeName string   `json:"nodeName"`
	Padding  *Padding `json:"padding,omitempty"`
	Gap      *float64 `json:"gap,omitempty"`
}

// Result bundles every extraction over one forest.
type Result struct {
	TextStyles   []ParsedTextStyle  `json:"textStyles"`
	Colors       []ParsedColor      `json:"colors"`
	AutoLayouts  []ParsedAutoLayout `json:"autoLayouts"`
	Spacing      []ParsedSpacing    `json:"spacing"`
	BorderRadius []float64          `json:"borderRadius"`
	NodeCount    int                `json:"nodeCount"`
}

// Extract validates the forest and runs every extraction over it in a single pass.
func Extract(roots []*design.Node) (*Result, error) {
	var (
		text    = newTextStyleCollector()
		colors  = newColorCollector()
		layouts = new(autoLayoutCollector)
		spacing = new(spacingCollector)
		radii   = newRadiusCollector()
	)

	count, err := walk(roots, text, colors, layouts, spacing, radii)
	if err != nil {
		return nil, err
	}

	return &Result{
		TextStyles:   text.styles,
		Colors:       colors.colors,
		AutoLayouts:  layouts.result(),
		Spacing:      spacing.result(),
		BorderRadius: radii.result(),
		NodeCount:    count,
	}, nil
}

// ExtractTextStyles collects the styles of TEXT nodes, deduplicated on (family, size, weight).
// The first node with a given key decides line height, letter spacing and text case.
// Line height units are not converted: within one file the raw values are comparable.
func ExtractTextStyles(roots []*design.Node) ([]ParsedTextStyle, error) {
	c := newTextStyleCollector()
	if _, err := walk(roots, c); err != nil {
		return nil, err
	}
	return c.styles, nil
}

// ExtractColors collects unique solid colors from fills, strokes and effects, in that order per node.
// Fills and strokes must be SOLID; effects count whenever they carry a color.
func ExtractColors(roots []*design.Node) ([]ParsedColor, error) {
	c := newColorCollector()
	if _, err := walk(roots, c); err != nil {
		return nil, err
	}
	return c.colors, nil
}

// ExtractAutoLayoutInfo emits one record per node whose layout mode is set and not NONE.
func ExtractAutoLayoutInfo(roots []*design.Node) ([]ParsedAutoLayout, error) {
	c := new(autoLayoutCollector)
	if _, err := walk(roots, c); err != nil {
		return nil, err
	}
	return c.result(), nil
}

// ExtractSpacing emits a record for every node with a non-zero padding side or a defined
// item spacing (zero included).
func ExtractSpacing(roots []*design.Node) ([]ParsedSpacing, error) {
	c := new(spacingCollector)
	if _, err := walk(roots, c); err != nil {
		return nil, err
	}
	return c.result(), nil
}

// ExtractBorderRadius returns every distinct corner radius, ascending.
// Per-corner radii contribute each corner independently.
func ExtractBorderRadius(roots []*design.Node) ([]float64, error) {
	c := newRadiusCollector()
	if _, err := walk(roots, c); err != nil {
		return nil, err
	}
	return c.result(), nil
}

// collector accumulates one extraction, one node at a time.
type collector interface {
	visit(n *design.Node)
}

// walk visits the forest once, pre-order, handing every node to each collector.
// A node is checked with design.CheckFinite before any collector sees it, so malformed
// graphs and non-finite values fail here instead of looping or being misclassified.
// It returns the number of nodes visited.
func walk(roots []*design.Node, collectors ...collector) (int, error) {
	count := 0
	err := design.Walk(roots, func(n *design.Node) error {
		if err := design.CheckFinite(n); err != nil {
			return err
		}
		count++
		for _, c := range collectors {
			c.visit(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("validate design tree: %w", err)
	}
	return count, nil
}

type textStyleKey struct {
	family       string
	size, weight float64
}

type textStyleCollector struct {
	styles []ParsedTextStyle
	seen   map[textStyleKey]bool
}

func newTextStyleCollector() *textStyleCollector {
	return &textStyleCollector{styles: []ParsedTextStyle{}, seen: make(map[textStyleKey]bool)}
}

func (c *textStyleCollector) visit(n *design.Node) {
	if n.Type != design.TypeText || n.Style == nil {
		return
	}
	s := n.Style

	family := s.FontFamily
	if family == "" {
		family = DefaultFontFamily
	}
	size := s.FontSize
	if size == 0 {
		size = DefaultFontSize
	}
	weight := s.FontWeight
	if weight == 0 {
		weight = DefaultFontWeight
	}

	key := textStyleKey{family, size, weight}
	if c.seen[key] {
		return
	}
	c.seen[key] = true

	lineHeight := size
	if s.LineHeight != nil {
		lineHeight = s.LineHeight.Value
	}
	var letterSpacing float64
	if s.LetterSpacing != nil {
		letterSpacing = s.LetterSpacing.Value
	}

	c.styles = append(c.styles, ParsedTextStyle{
		NodeID:        n.ID,
		NodeName:      n.Name,
		FontFamily:    family,
		FontSize:      size,
		FontWeight:    weight,
		LineHeight:    lineHeight,
		LetterSpacing: letterSpacing,
		TextCase:      s.TextCase,
	})
}

type colorCollector struct {
	colors []ParsedColor
	seen   map[string]bool
}

func newColorCollector() *colorCollector {
	return &colorCollector{colors: []ParsedColor{}, seen: make(map[string]bool)}
}

func (c *colorCollector) visit(n *design.Node) {
	for _, fill := range n.Fills {
		if fill.Type == design.PaintSolid {
			c.add(fill)
		}
	}
	for _, stroke := range n.Strokes {
		if stroke.Type == design.PaintSolid {
			c.add(stroke)
		}
	}
	for _, effect := range n.Effects {
		c.add(effect)
	}
}

func (c *colorCollector) add(p design.Paint) {
	if p.Color == nil {
		return
	}
	hex := ColorToHex(p.Color)
	if c.seen[hex] {
		return
	}
	c.seen[hex] = true

	alpha := p.Color.A
	if p.Opacity != nil {
		alpha *= *p.Opacity
	}
	c.colors = append(c.colors, ParsedColor{
		Hex:   hex,
		R:     p.Color.R,
		G:     p.Color.G,
		B:     p.Color.B,
		Alpha: alpha,
		RGBA: fmt.Sprintf("rgba(%d, %d, %d, %.2f)",
			channel(p.Color.R), channel(p.Color.G), channel(p.Color.B), alpha),
	})
}

type autoLayoutCollector struct {
	layouts []ParsedAutoLayout
}

func (c *autoLayoutCollector) visit(n *design.Node) {
	if n.LayoutMode == "" || n.LayoutMode == design.LayoutNone {
		return
	}
	c.layouts = append(c.layouts, ParsedAutoLayout{
		NodeID:        n.ID,
		NodeName:      n.Name,
		Direction:     n.LayoutMode,
		PaddingTop:    design.Deref(n.PaddingTop),
		PaddingRight:  design.Deref(n.PaddingRight),
		PaddingBottom: design.Deref(n.PaddingBottom),
		PaddingLeft:   design.Deref(n.PaddingLeft),
		ItemSpacing:   design.Deref(n.ItemSpacing),
	})
}

func (c *autoLayoutCollector) result() []ParsedAutoLayout {
	if c.layouts == nil {
		return []ParsedAutoLayout{}
	}
	return c.layouts
}

type spacingCollector struct {
	spacing []ParsedSpacing
}

func (c *spacingCollector) visit(n *design.Node) {
	rec := ParsedSpacing{NodeID: n.ID, NodeName: n.Name}

	pad := Padding{
		Top:    design.Deref(n.PaddingTop),
		Right:  design.Deref(n.PaddingRight),
		Bottom: design.Deref(n.PaddingBottom),
		Left:   design.Deref(n.PaddingLeft),
	}
	if pad.Top != 0 || pad.Right != 0 || pad.Bottom != 0 || pad.Left != 0 {
		rec.Padding = &pad
	}
	if n.ItemSpacing != nil {
		gap := *n.ItemSpacing
		rec.Gap = &gap
	}

	if rec.Padding != nil || rec.Gap != nil {
		c.spacing = append(c.spacing, rec)
	}
}

func (c *spacingCollector) result() []ParsedSpacing {
	if c.spacing == nil {
		return []ParsedSpacing{}
	}
	return c.spacing
}

type radiusCollector struct {
	radii []float64
	seen  map[float64]bool
}

func newRadiusCollector() *radiusCollector {
	return &radiusCollector{radii: []float64{}, seen: make(map[float64]bool)}
}

func (c *radiusCollector) visit(n *design.Node) {
	for _, r := range n.CornerRadius.Values() {
		if c.seen[r] {
			continue
		}
		c.seen[r] = true
		c.radii = append(c.radii, r)
	}
}

func (c *radiusCollector) result() []float64 {
	sort.Float64s(c.radii)
	return c.radii
}

// ColorToHex converts a normalized RGBA color to uppercase #RRGGBB. Alpha is ignored.
func ColorToHex(c *design.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", channel(c.R), channel(c.G), channel(c.B))
}

// channel maps a normalized channel onto 0..255, clamping out-of-range input.
func channel(v float64) int {
	c := int(math.Round(v * 255))
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return c
}
