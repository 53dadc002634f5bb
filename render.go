package figmadocgen

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kataras/figma-docgen/pkg/formatter"
)

// Generated file names.
const (
	FileTokensJSON     = "tokens.json"
	FileTokensMarkdown = "tokens.md"
	FileTokensCSS      = "tokens.css"
	FileTailwind       = "tailwind.config.json"
	FileAnalysis       = "analysis.md"
	FileAccessibility  = "accessibility.md"
	FileComponents     = "components.md"
	FileSOP            = "sop.md"
	FileDesignKit      = "designkit.md"
	FileFeatures       = "features.md"
	FileResult         = "result.json"
)

// renderFiles renders every output file of res.
func renderFiles(res *Result) (map[string][]byte, error) {
	tokensJSON, err := json.MarshalIndent(res.Tokens, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tokens: %w", err)
	}
	tailwind, err := formatter.TailwindConfig(res.Tokens)
	if err != nil {
		return nil, err
	}
	resultJSON, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	b := res.Docs
	return map[string][]byte{
		FileTokensJSON:     append(tokensJSON, '\n'),
		FileTokensMarkdown: []byte(formatter.TokensMarkdown(res.Tokens, res.FileName)),
		FileTokensCSS:      []byte(formatter.CSSVariables(res.Tokens)),
		FileTailwind:       tailwind,
		FileAnalysis:       []byte(formatter.AnalysisMarkdown(res.FileName, b.Analysis)),
		FileAccessibility:  []byte(formatter.AccessibilityMarkdown(res.FileName, b.Accessibility)),
		FileComponents:     []byte(formatter.ComponentsMarkdown(res.FileName, b.Components)),
		FileSOP:            []byte(formatter.SOPMarkdown(b.SOP)),
		FileDesignKit:      []byte(formatter.DesignKitMarkdown(b.DesignKit)),
		FileFeatures:       []byte(formatter.FeaturesMarkdown(res.FileName, b.Features)),
		FileResult:         append(resultJSON, '\n'),
	}, nil
}

func sortedFileNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
