package figmadocgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kataras/figma-docgen/pkg/database"
	"github.com/kataras/figma-docgen/pkg/design"
	"github.com/kataras/figma-docgen/pkg/docs"
	"github.com/kataras/figma-docgen/pkg/extractor"
	"github.com/kataras/figma-docgen/pkg/figma"
	"github.com/kataras/figma-docgen/pkg/imager"
	"github.com/kataras/figma-docgen/pkg/llm"
	"github.com/kataras/figma-docgen/pkg/storage"
	"github.com/kataras/figma-docgen/pkg/tokens"
)

// ErrMissingToken is returned by Run when no Figma access token is given.
var ErrMissingToken = errors.New("figma access token is required")

// Options configures the analysis.
type Options struct {
	AccessToken string
	FileURL     string   // Figma file URL
	NodeIDs     []string // empty = node IDs from the URL, or the whole page
	Page        string   // page name when analyzing a whole file; empty = first page

	LLM         *llm.Provider // nil = documents are built from defaults only
	Concurrency int           // document generators running at once; 0 = docs.DefaultConcurrency

	Store      storage.Store       // nil = nothing is persisted
	Repository database.Repository // nil = no database record

	Previews      bool      // render top-level frames into Store
	PreviewFormat string    // "png", "svg", "jpg", "pdf"
	PreviewScales []float64 // e.g. [1, 2]

	FigmaOptions []figma.Option // e.g. figma.WithBaseURL for tests
	Logger       Logger         // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the analysis output.
type Result struct {
	SessionID  string                 `json:"sessionId"`
	FileKey    string                 `json:"fileKey"`
	FileName   string                 `json:"fileName"`
	Page       string                 `json:"page,omitempty"`
	NodeIDs    []string               `json:"nodeIds,omitempty"`
	Created    time.Time              `json:"created"`
	NodeCount  int                    `json:"nodeCount"`
	Extraction *extractor.Result      `json:"extraction"`
	Tokens     *tokens.Set            `json:"tokens"`
	Docs       *docs.Bundle           `json:"documents"`
	Previews   []imager.ExportedAsset `json:"previews,omitempty"`

	// Files maps generated file names (tokens.css, analysis.md, ...) to their content.
	Files map[string][]byte `json:"-"`
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// Run executes the analysis pipeline: fetch, convert, extract, synthesize tokens, generate
// documents, render files, then persist and export previews when configured.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.AccessToken) == "" {
		return nil, ErrMissingToken
	}
	if opts.Previews {
		if err := validatePreviewOptions(&opts); err != nil {
			return nil, err
		}
	}

	// Extract file key from URL.
	opts.logInfo("Extracting file key from URL...")
	fileKey, err := figma.ExtractFileKey(opts.FileURL)
	if err != nil {
		return nil, fmt.Errorf("extract file key: %w", err)
	}
	opts.logInfo("File key: %s", fileKey)

	// Extract node IDs from URL or use explicit ones.
	targetNodeIDs := opts.NodeIDs
	if len(targetNodeIDs) > 0 {
		opts.logInfo("Using %d explicit node ID(s)", len(targetNodeIDs))
	} else {
		targetNodeIDs, err = figma.ExtractNodeIDs(opts.FileURL)
		if err != nil {
			return nil, fmt.Errorf("extract node IDs from URL: %w", err)
		}
		if len(targetNodeIDs) > 0 {
			opts.logInfo("Found %d node(s) in URL", len(targetNodeIDs))
		}
	}

	client := figma.NewClient(opts.AccessToken, opts.FigmaOptions...)
	res := &Result{FileKey: fileKey, NodeIDs: targetNodeIDs, Created: time.Now().UTC()}

	var roots []*design.Node
	if len(targetNodeIDs) > 0 {
		opts.logInfo("Fetching %d node(s) from Figma...", len(targetNodeIDs))
		nodesResp, err := client.GetFileNodes(ctx, fileKey, targetNodeIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch nodes: %w", err)
		}
		roots = design.NodeRoots(nodesResp, targetNodeIDs)
		if len(roots) == 0 {
			return nil, fmt.Errorf("none of the requested nodes exist in file %s", fileKey)
		}
		if len(roots) < len(targetNodeIDs) {
			opts.logWarn("%d of %d requested node(s) were not found", len(targetNodeIDs)-len(roots), len(targetNodeIDs))
		}
		res.FileName = nodesResp.Name
	} else {
		opts.logInfo("Fetching file data from Figma...")
		fileResp, err := client.GetFile(ctx, fileKey)
		if err != nil {
			return nil, fmt.Errorf("fetch file: %w", err)
		}
		res.FileName = fileResp.Name
		roots, res.Page, err = design.PageRoots(&fileResp.Document, opts.Page)
		if err != nil {
			return nil, err
		}
		opts.logInfo("Page: %s", res.Page)
	}
	opts.logInfo("File: %s", res.FileName)

	// The core: extraction and token synthesis must finish before any document is generated.
	opts.logInfo("Extracting design values...")
	res.Extraction, err = extractor.Extract(roots)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	res.NodeCount = res.Extraction.NodeCount

	res.Tokens, err = tokens.Synthesize(res.Extraction)
	if err != nil {
		return nil, fmt.Errorf("synthesize tokens: %w", err)
	}
	opts.logInfo("Synthesized %d color, %d typography, %d spacing and %d radius token(s)",
		len(res.Tokens.Colors), len(res.Tokens.Typography), len(res.Tokens.Spacing), len(res.Tokens.BorderRadius))

	opts.logInfo("Generating documents...")
	gen := &docs.Generator{LLM: opts.LLM, Logger: opts.Logger, Concurrency: opts.Concurrency}
	res.Docs = gen.GenerateAll(ctx, docs.Input{
		FileName:   res.FileName,
		Roots:      roots,
		Extraction: res.Extraction,
		Tokens:     res.Tokens,
	})

	scope := append([]string{res.Page}, targetNodeIDs...)
	res.SessionID = storage.NewSessionID(fileKey, scope...)

	res.Files, err = renderFiles(res)
	if err != nil {
		return nil, err
	}

	if opts.Store != nil {
		if err := persistSession(ctx, &opts, res); err != nil {
			return nil, err
		}
	}

	if opts.Repository != nil {
		if err := opts.Repository.Save(ctx, analysisRecord(res)); err != nil {
			return nil, fmt.Errorf("record analysis: %w", err)
		}
	}

	if opts.Previews {
		exportPreviews(ctx, &opts, client, roots, res)
	}

	return res, nil
}

func validatePreviewOptions(opts *Options) error {
	if opts.PreviewFormat == "" {
		opts.PreviewFormat = "png"
	}
	validFormats := map[string]bool{"png": true, "svg": true, "jpg": true, "pdf": true}
	if !validFormats[opts.PreviewFormat] {
		return fmt.Errorf("invalid image format %q (must be png, svg, jpg, or pdf)", opts.PreviewFormat)
	}
	for _, s := range opts.PreviewScales {
		if s <= 0 {
			return fmt.Errorf("scale value must be positive, got %g", s)
		}
	}
	return nil
}

func persistSession(ctx context.Context, opts *Options, res *Result) error {
	opts.logInfo("Saving session %s...", res.SessionID)
	for _, name := range sortedFileNames(res.Files) {
		if err := opts.Store.Put(ctx, res.SessionID, name, res.Files[name]); err != nil {
			return fmt.Errorf("store %s: %w", name, err)
		}
	}

	info := storage.SessionInfo{
		SessionID:  res.SessionID,
		FileKey:    res.FileKey,
		FileName:   res.FileName,
		Created:    res.Created,
		TokenCount: tokenCount(res.Tokens),
		Sources:    sourceNames(res.Docs),
	}
	if err := opts.Store.SaveSession(ctx, info); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func exportPreviews(ctx context.Context, opts *Options, client *figma.Client, roots []*design.Node, res *Result) {
	if opts.Store == nil {
		opts.logWarn("Previews need session storage, skipping")
		return
	}
	frames := imager.CollectFrames(roots)
	if len(frames) == 0 {
		opts.logInfo("No top-level frames to preview")
		return
	}

	opts.logInfo("Rendering %d preview(s)...", len(frames))
	exported, err := imager.ExportPreviews(ctx, client, res.FileKey, frames, opts.Store, res.SessionID, imager.ExportConfig{
		Format: opts.PreviewFormat,
		Scales: opts.PreviewScales,
	})
	if err != nil {
		// Previews never fail the analysis.
		opts.logError("Rendering previews failed: %v", err)
		return
	}
	for _, e := range exported.Errors {
		opts.logWarn("%v", e)
	}
	res.Previews = exported.Assets
	opts.logInfo("Exported %d preview(s)", len(exported.Assets))
}

func analysisRecord(res *Result) *database.Analysis {
	a := &database.Analysis{
		SessionID: res.SessionID,
		FileKey:   res.FileKey,
		FileName:  res.FileName,
		CreatedAt: res.Created,
		Tokens:    res.Files[FileTokensJSON],
		Sources:   sourceNames(res.Docs),
	}
	if res.Tokens != nil {
		a.ColorCount = len(res.Tokens.Colors)
		a.TypographyCount = len(res.Tokens.Typography)
		a.SpacingCount = len(res.Tokens.Spacing)
		a.RadiusCount = len(res.Tokens.BorderRadius)
	}
	return a
}

func tokenCount(set *tokens.Set) int {
	if set == nil {
		return 0
	}
	return len(set.Colors) + len(set.Typography) + len(set.Spacing) + len(set.BorderRadius)
}

func sourceNames(b *docs.Bundle) map[string]string {
	if b == nil {
		return nil
	}
	out := make(map[string]string)
	for name, src := range b.Sources() {
		out[name] = string(src)
	}
	return out
}
