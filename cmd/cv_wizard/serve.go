package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-wizard/internal/config"
	"github.com/jonathan/cv-wizard/internal/export"
	"github.com/jonathan/cv-wizard/internal/rendering"
	"github.com/jonathan/cv-wizard/internal/server"
	"github.com/jonathan/cv-wizard/internal/server/ratelimit"
)

var (
	servePort         int
	serveConfigFile   string
	serveTemplateFile string
	serveSecureCookie bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the three wizard steps, preview and PDF export as REST endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080, or PORT)")
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to JSON config file")
	serveCmd.Flags().StringVar(&serveTemplateFile, "page-template", "", "Path to an HTML page template overriding the embedded one")
	serveCmd.Flags().BoolVar(&serveSecureCookie, "secure-cookie", false, "Mark the session cookie Secure")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigFile)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	sessionCfg, err := config.NewSessionConfig()
	if err != nil {
		return err
	}

	renderer, err := newRenderer(serveTemplateFile)
	if err != nil {
		return err
	}
	assembler, err := newAssembler(cfg)
	if err != nil {
		return err
	}

	store, closers, err := openStorage(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open snapshot storage: %w", err)
	}

	srv, err := server.New(server.Config{
		Port:    cfg.Port,
		Storage: store,
		Session: sessionCfg,
		Deps: server.SessionDeps{
			Renderer:      renderer,
			Rasterizer:    newRasterizer(cfg),
			Assembler:     assembler,
			Export:        export.Options{Capture: captureOptions(cfg), Verbose: cfg.Verbose},
			MaxPhotoBytes: cfg.MaxPhotoBytes,
			Verbose:       cfg.Verbose,
		},
		RateLimit:    ratelimit.LoadConfig(cfg.ExportsPerMinute),
		IdleTTL:      cfg.SessionTTL(),
		SecureCookie: serveSecureCookie,
		Closers:      closers,
	})
	if err != nil {
		for _, closeFn := range closers {
			_ = closeFn()
		}
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func newRenderer(templatePath string) (*rendering.Renderer, error) {
	if templatePath != "" {
		return rendering.LoadRenderer(templatePath)
	}
	return rendering.NewRenderer()
}
