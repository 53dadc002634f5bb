package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	figmadocgen "github.com/kataras/figma-docgen"
	"github.com/kataras/figma-docgen/pkg/config"
	"github.com/kataras/figma-docgen/pkg/docs"
	"github.com/kataras/figma-docgen/pkg/figma"
	"github.com/kataras/figma-docgen/pkg/llm"
	"github.com/kataras/figma-docgen/pkg/server"
	"github.com/kataras/figma-docgen/pkg/storage"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = figma.Version

var (
	envFile string

	figmaURL      string
	accessToken   string
	nodeIDs       string
	page          string
	outputDir     string
	previews      bool
	previewFormat string
	previewScales string
	noLLM         bool

	port string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "figma-docgen",
		Short:        "Generate design tokens and documentation from Figma files",
		Long:         "A tool to extract design tokens from Figma files via the Figma API and generate design documentation with a language model",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load settings from this .env file instead of ./.env")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a Figma file and write tokens and documents",
		RunE:  analyze,
	}
	analyzeCmd.Flags().StringVarP(&figmaURL, "url", "u", "", "Figma file URL (required)")
	analyzeCmd.Flags().StringVarP(&accessToken, "token", "t", "", "Figma Personal Access Token (default $FIGMA_TOKEN)")
	analyzeCmd.Flags().StringVarP(&nodeIDs, "node-ids", "n", "", "Comma-separated node IDs to analyze instead of a whole page")
	analyzeCmd.Flags().StringVarP(&page, "page", "p", "", "Page to analyze (default: the first page)")
	analyzeCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Session output directory (default $OUTPUT_DIR)")
	analyzeCmd.Flags().BoolVar(&previews, "previews", false, "Render top-level frames into the session")
	analyzeCmd.Flags().StringVar(&previewFormat, "preview-format", "png", "Preview format: png, svg, jpg, pdf")
	analyzeCmd.Flags().StringVar(&previewScales, "preview-scales", "1", "Comma-separated preview scale factors (e.g. \"1,2\")")
	analyzeCmd.Flags().BoolVar(&noLLM, "no-llm", false, "Do not call the language model; generate default documents only")
	analyzeCmd.MarkFlagRequired("url")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&port, "port", "", "Listen address or port (default $PORT or :8080)")
	serveCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Session output directory (default $OUTPUT_DIR)")
	serveCmd.Flags().BoolVar(&noLLM, "no-llm", false, "Do not call the language model")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("figma-docgen version %s\n", version)
		},
	}

	rootCmd.AddCommand(analyzeCmd, serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.Load(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if outputDir != "" {
		cfg.SetOutputDir(outputDir)
	}
	if noLLM {
		cfg.LLM.APIKey = ""
	}
	return cfg, nil
}

func newProvider(cfg *config.Config) *llm.Provider {
	if cfg.LLM.APIKey == "" {
		return nil
	}
	return llm.NewProvider(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: 2 * time.Minute,
	})
}

func analyze(cmd *cobra.Command, args []string) error {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	cyan.Println("\n🎨 Figma Design Docs")
	cyan.Println("====================")
	cyan.Println()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if accessToken == "" {
		accessToken = cfg.FigmaToken
	}

	scales, err := figmadocgen.ParseScales(previewScales)
	if err != nil {
		return err
	}

	var parsedNodeIDs []string
	if nodeIDs != "" {
		parsedNodeIDs = figmadocgen.ParseNodeIDs(nodeIDs)
	}

	st, err := initStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	provider := newProvider(cfg)

	result, err := figmadocgen.Run(cmd.Context(), figmadocgen.Options{
		AccessToken:   accessToken,
		FileURL:       figmaURL,
		NodeIDs:       parsedNodeIDs,
		Page:          page,
		LLM:           provider,
		Concurrency:   cfg.LLM.Concurrency,
		Store:         st.session,
		Repository:    st.repository,
		Previews:      previews,
		PreviewFormat: previewFormat,
		PreviewScales: scales,
		Logger:        &cliLogger{},
	})
	if err != nil {
		return err
	}

	printSummary(result)

	location := st.describe(cfg)
	if fileStore, ok := st.session.(*storage.FileStore); ok {
		location = fileStore.SessionDir(result.SessionID)
	}
	green.Printf("\n✨ Successfully generated %d file(s) in %s\n\n", len(result.Files)+len(result.Previews), location)
	return nil
}

func printSummary(result *figmadocgen.Result) {
	cyan := color.New(color.FgCyan)

	cyan.Println("\n📊 Analysis Summary:")
	fmt.Printf("  • File: %s\n", result.FileName)
	if result.Page != "" {
		fmt.Printf("  • Page: %s\n", result.Page)
	}
	fmt.Printf("  • Session: %s\n", result.SessionID)
	fmt.Printf("  • Nodes: %d\n", result.NodeCount)

	set := result.Tokens
	fmt.Printf("  • Colors: %d\n", len(set.Colors))
	fmt.Printf("  • Typography: %d\n", len(set.Typography))
	fmt.Printf("  • Spacing Values: %d\n", len(set.Spacing))
	fmt.Printf("  • Border Radii: %d\n", len(set.BorderRadius))
	if len(result.Previews) > 0 {
		fmt.Printf("  • Previews: %d\n", len(result.Previews))
	}

	cyan.Println("\n📝 Documents:")
	sources := result.Docs.Sources()
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		src := sources[name]
		label := color.GreenString(string(src))
		if src == docs.SourceDefault {
			label = color.YellowString(string(src))
		}
		fmt.Printf("  • %s: %s\n", name, label)
	}
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = config.NormalizePort(port)
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	st, err := initStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := &server.Server{
		Store:       st.session,
		Repository:  st.repository,
		LLM:         newProvider(cfg),
		Logger:      logger,
		FigmaToken:  cfg.FigmaToken,
		Concurrency: cfg.LLM.Concurrency,
	}
	httpServer := &http.Server{
		Addr:              cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Port, "storage", st.describe(cfg), "llm", srv.LLM.Configured())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// cliLogger implements figmadocgen.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}
