// Package docs generates the human-readable documents that accompany a token set:
// analysis, accessibility report, component inventory, SOP, DesignKit and feature breakdown.
//
// Every generator first computes a deterministic document from the design tree and tokens.
// When a language model is configured the generator asks it to write or enrich the document;
// if that fails for any reason the deterministic document is returned instead. The outcome is
// always a Result carrying a usable value, with Source telling which path produced it.
package docs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kataras/figma-docgen/pkg/design"
	"github.com/kataras/figma-docgen/pkg/extractor"
	"github.com/kataras/figma-docgen/pkg/llm"
	"github.com/kataras/figma-docgen/pkg/tokens"
)

// Source tells which path produced a document.
type Source string

const (
	// SourceModel means the language model wrote or enriched the document.
	SourceModel Source = "model"
	// SourceDefault means the document is the deterministic one computed from the tokens.
	SourceDefault Source = "default"
)

// Result is a generated document. Value is always usable; Err holds the reason a
// model-written document was not used, if any.
type Result[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
	Err    error  `json:"-"`
}

// Fallback reports whether the deterministic document was used because the model failed.
func (r Result[T]) Fallback() bool {
	return r.Source == SourceDefault && r.Err != nil && !errors.Is(r.Err, llm.ErrNotConfigured)
}

// Input is everything a generator may look at. Extraction and Tokens must come from Roots.
type Input struct {
	FileName   string
	Roots      []*design.Node
	Extraction *extractor.Result
	Tokens     *tokens.Set
}

// Logger receives generator warnings. It is satisfied by the root package Logger.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// DefaultConcurrency is the number of documents generated at once when Generator.Concurrency is zero.
const DefaultConcurrency = 3

// Generator produces documents. The zero value generates deterministic documents only.
type Generator struct {
	LLM         *llm.Provider
	Logger      Logger
	Concurrency int
}

// Bundle holds one of every document.
type Bundle struct {
	Analysis      Result[Analysis]         `json:"analysis"`
	Accessibility Result[Accessibility]    `json:"accessibility"`
	Components    Result[ComponentReport]  `json:"components"`
	SOP           Result[SOP]              `json:"sop"`
	DesignKit     Result[DesignKit]        `json:"designKit"`
	Features      Result[FeatureBreakdown] `json:"features"`
}

// Sources maps each document name to the path that produced it.
func (b *Bundle) Sources() map[string]Source {
	return map[string]Source{
		"analysis":      b.Analysis.Source,
		"accessibility": b.Accessibility.Source,
		"components":    b.Components.Source,
		"sop":           b.SOP.Source,
		"designkit":     b.DesignKit.Source,
		"features":      b.Features.Source,
	}
}

// GenerateAll runs every generator, at most Concurrency at a time, and waits for all of them.
// It must only be called once the token set is complete.
func (g *Generator) GenerateAll(ctx context.Context, in Input) *Bundle {
	b := new(Bundle)

	// Each task writes its own field of b.
	tasks := []func(){
		func() { b.Analysis = g.Analysis(ctx, in) },
		func() { b.Accessibility = g.Accessibility(ctx, in) },
		func() { b.Components = g.Components(ctx, in) },
		func() { b.SOP = g.SOP(ctx, in) },
		func() { b.DesignKit = g.DesignKit(ctx, in) },
		func() { b.Features = g.FeatureBreakdown(ctx, in) },
	}

	limit := g.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, limit)
	for _, task := range tasks {
		wg.Add(1)
		go func(run func()) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			run()
		}(task)
	}
	wg.Wait()

	return b
}

// promptInput is the compact view of the design sent to the model.
type promptInput struct {
	FileName  string      `json:"fileName"`
	NodeCount int         `json:"nodeCount"`
	Tokens    *tokens.Set `json:"tokens"`
	Extra     any         `json:"context,omitempty"`
}

func newPromptInput(in Input, extra any) promptInput {
	p := promptInput{FileName: in.FileName, Tokens: in.Tokens, Extra: extra}
	if in.Extraction != nil {
		p.NodeCount = in.Extraction.NodeCount
	}
	return p
}

// ask sends prompt and input to the model and decodes the answer into M.
func ask[M any](ctx context.Context, g *Generator, prompt string, input any) (M, error) {
	var zero M
	client, err := g.LLM.Client(ctx)
	if err != nil {
		return zero, err
	}
	raw, err := client.GenerateJSON(ctx, prompt, input)
	if err != nil {
		return zero, err
	}
	return llm.Decode[M](raw)
}

// fallback returns the deterministic document, logging why the model one was not used.
func fallback[T any](g *Generator, name string, v T, err error) Result[T] {
	if g.Logger != nil && err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			g.Logger.Infof("%s: no language model configured, using default content", name)
		} else {
			g.Logger.Warnf("%s: language model failed, using default content: %v", name, err)
		}
	}
	return Result[T]{Value: v, Source: SourceDefault, Err: err}
}

func model[T any](v T) Result[T] {
	return Result[T]{Value: v, Source: SourceModel}
}

// errIncomplete marks a model answer that decoded but lacks required content.
func errIncomplete(field string) error {
	return fmt.Errorf("%w: missing %s", llm.ErrInvalidJSON, field)
}

func tokenSet(in Input) *tokens.Set {
	if in.Tokens == nil {
		return &tokens.Set{}
	}
	return in.Tokens
}

func nodeCount(in Input) int {
	if in.Extraction == nil {
		return 0
	}
	return in.Extraction.NodeCount
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultList(list, def []string) []string {
	if len(list) == 0 {
		return def
	}
	return list
}
