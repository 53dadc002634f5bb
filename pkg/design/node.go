// Package design holds the in-memory model of a design file's layer tree.
//
// The model is deliberately independent of the Figma wire format: FromFigma converts API
// nodes into it, and everything downstream (extraction, token synthesis, documents) only
// ever sees design.Node values. Every optional property is a pointer or a zero value that
// means "absent", so consumers can treat missing data as "no contribution".
package design

// Node types that the pipeline treats specially.
const (
	TypeDocument     = "DOCUMENT"
	TypeCanvas       = "CANVAS"
	TypeFrame        = "FRAME"
	TypeGroup        = "GROUP"
	TypeText         = "TEXT"
	TypeRectangle    = "RECTANGLE"
	TypeComponent    = "COMPONENT"
	TypeComponentSet = "COMPONENT_SET"
	TypeInstance     = "INSTANCE"
)

// Layout modes.
const (
	LayoutHorizontal = "HORIZONTAL"
	LayoutVertical   = "VERTICAL"
	LayoutNone       = "NONE"
)

// PaintSolid is the paint kind that carries a single color.
const PaintSolid = "SOLID"

// Node is one element of the layer tree. Children are owned exclusively by their parent.
type Node struct {
	ID       string
	Name     string
	Type     string
	Children []*Node

	Fills   []Paint
	Strokes []Paint
	Effects []Paint

	Characters string
	Style      *TextStyle

	LayoutMode    string
	PaddingTop    *float64
	PaddingRight  *float64
	PaddingBottom *float64
	PaddingLeft   *float64
	ItemSpacing   *float64
	CornerRadius  *CornerRadius

	Width, Height, X, Y *float64
}

// Paint is a fill, stroke or effect descriptor.
type Paint struct {
	Type    string
	Color   *RGBA
	Opacity *float64
}

// RGBA is a color with channels normalized to [0,1].
type RGBA struct {
	R, G, B, A float64
}

// TextStyle describes typography of a TEXT node. Zero FontFamily, FontSize and FontWeight mean absent.
type TextStyle struct {
	FontFamily    string
	FontSize      float64
	FontWeight    float64
	LineHeight    *Measure
	LetterSpacing *Measure
	TextCase      string
}

// Measure is either an absolute number (Unit == "") or a value with a unit such as PERCENT.
type Measure struct {
	Value float64
	Unit  string
}

// CornerRadius is either a single uniform radius or four corner-specific radii
// in top-left, top-right, bottom-right, bottom-left order.
type CornerRadius struct {
	Uniform *float64
	Corners *[4]float64
}

// Values returns the radii carried by c: one value for a uniform radius, four for per-corner radii.
func (c *CornerRadius) Values() []float64 {
	switch {
	case c == nil:
		return nil
	case c.Corners != nil:
		return []float64{c.Corners[0], c.Corners[1], c.Corners[2], c.Corners[3]}
	case c.Uniform != nil:
		return []float64{*c.Uniform}
	}
	return nil
}

// Uniform returns a CornerRadius with a single value.
func Uniform(r float64) *CornerRadius {
	return &CornerRadius{Uniform: &r}
}

// Corners returns a CornerRadius with four corner values.
func Corners(topLeft, topRight, bottomRight, bottomLeft float64) *CornerRadius {
	return &CornerRadius{Corners: &[4]float64{topLeft, topRight, bottomRight, bottomLeft}}
}

// Float returns a pointer to v. It keeps literal optional fields readable.
func Float(v float64) *float64 {
	return &v
}

// Deref returns *p, or 0 when p is nil.
func Deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
