package design

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrCyclicStructure is returned when a node is reachable from itself.
	ErrCyclicStructure = errors.New("cyclic structure")
	// ErrSharedNode is returned when a node is owned by more than one parent.
	ErrSharedNode = errors.New("node has more than one parent")
	// ErrNonFinite is returned when a numeric field holds NaN or Inf.
	ErrNonFinite = errors.New("non-finite numeric value")
)

// Walk visits every node of the forest depth-first, parent before children, children in order.
// Nil roots and nil children are skipped. Returning a non-nil error from fn stops the walk.
//
// Walk keeps its own visited set so a malformed graph fails with ErrCyclicStructure or
// ErrSharedNode instead of looping.
func Walk(roots []*Node, fn func(n *Node) error) error {
	w := walker{
		onPath:  make(map[*Node]bool),
		visited: make(map[*Node]bool),
		fn:      fn,
	}
	for _, root := range roots {
		if err := w.visit(root); err != nil {
			return err
		}
	}
	return nil
}

type walker struct {
	onPath  map[*Node]bool
	visited map[*Node]bool
	fn      func(*Node) error
}

func (w *walker) visit(n *Node) error {
	if n == nil {
		return nil
	}
	if w.onPath[n] {
		return fmt.Errorf("node %q (%s): %w", n.ID, n.Name, ErrCyclicStructure)
	}
	if w.visited[n] {
		return fmt.Errorf("node %q (%s): %w", n.ID, n.Name, ErrSharedNode)
	}
	w.visited[n] = true

	if err := w.fn(n); err != nil {
		return err
	}

	w.onPath[n] = true
	for _, child := range n.Children {
		if err := w.visit(child); err != nil {
			return err
		}
	}
	delete(w.onPath, n)
	return nil
}

// Validate checks the forest is a proper tree and that every numeric field used by
// extraction is finite.
func Validate(roots []*Node) error {
	return Walk(roots, CheckFinite)
}

// Count returns the number of nodes in the forest.
func Count(roots []*Node) (int, error) {
	n := 0
	err := Walk(roots, func(*Node) error {
		n++
		return nil
	})
	return n, err
}

// CheckFinite reports the first numeric field of n, children excluded, that is NaN or Inf.
func CheckFinite(n *Node) error {
	bad := func(field string) error {
		return fmt.Errorf("node %q (%s) field %s: %w", n.ID, n.Name, field, ErrNonFinite)
	}

	paintGroups := []struct {
		name   string
		paints []Paint
	}{{"fills", n.Fills}, {"strokes", n.Strokes}, {"effects", n.Effects}}
	for _, group := range paintGroups {
		for i, p := range group.paints {
			if p.Color != nil && !allFinite(p.Color.R, p.Color.G, p.Color.B, p.Color.A) {
				return bad(fmt.Sprintf("%s[%d].color", group.name, i))
			}
			if p.Opacity != nil && !finite(*p.Opacity) {
				return bad(fmt.Sprintf("%s[%d].opacity", group.name, i))
			}
		}
	}

	if s := n.Style; s != nil {
		if !allFinite(s.FontSize, s.FontWeight) {
			return bad("style")
		}
		if s.LineHeight != nil && !finite(s.LineHeight.Value) {
			return bad("style.lineHeight")
		}
		if s.LetterSpacing != nil && !finite(s.LetterSpacing.Value) {
			return bad("style.letterSpacing")
		}
	}

	optional := []struct {
		name string
		v    *float64
	}{
		{"paddingTop", n.PaddingTop},
		{"paddingRight", n.PaddingRight},
		{"paddingBottom", n.PaddingBottom},
		{"paddingLeft", n.PaddingLeft},
		{"itemSpacing", n.ItemSpacing},
		{"width", n.Width},
		{"height", n.Height},
		{"x", n.X},
		{"y", n.Y},
	}
	for _, f := range optional {
		if f.v != nil && !finite(*f.v) {
			return bad(f.name)
		}
	}

	if !allFinite(n.CornerRadius.Values()...) {
		return bad("cornerRadius")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(vs ...float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
