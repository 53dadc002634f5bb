// Package figmadocgen turns a Figma file into design tokens and design documentation.
//
// It fetches the file (or selected nodes) through the Figma API, extracts colors,
// typography, spacing and corner radii, synthesizes named design tokens, and generates
// an analysis, an accessibility report, a component inventory, a feature breakdown,
// an implementation SOP and a design kit. A language model writes the prose when one
// is configured; every document falls back to deterministic content otherwise.
//
// The CLI and HTTP server live in cmd/figma-docgen; this root package exposes the same
// pipeline as a Go API.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named figmadocgen:
//
//	import "github.com/kataras/figma-docgen" // package figmadocgen
//
// # Quick start
//
//	result, err := figmadocgen.Run(ctx, figmadocgen.Options{
//	    AccessToken: os.Getenv("FIGMA_TOKEN"),
//	    FileURL:     "https://www.figma.com/design/ABC123/My-Design",
//	    LLM:         llm.NewProvider(llm.Config{APIKey: os.Getenv("GEMINI_API_KEY")}),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("tokens.css", result.Files[figmadocgen.FileTokensCSS], 0644)
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. [SlogLogger] adapts a *slog.Logger.
//
// # Node-scoped analysis
//
// To analyze specific frames or components rather than a whole page,
// populate [Options.NodeIDs] or include a node-id query parameter in the
// Figma URL. Without either, the first page (or [Options.Page]) is analyzed.
//
// # Persistence
//
// Set [Options.Store] to write every generated file under a new session, and
// [Options.Repository] to record the analysis in a database. With [Options.Previews]
// the top-level frames are rendered by Figma and stored next to the documents.
package figmadocgen
