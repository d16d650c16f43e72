package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-wizard/internal/export"
	"github.com/jonathan/cv-wizard/internal/observability"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshots as PDF files",
	Long:  "Renders each snapshot with its selected template, captures it in headless Chrome and writes one PDF per snapshot into the output directory.",
	RunE:  runExport,
}

var (
	exportSnapshotFiles []string
	exportOutputDir     string
	exportConfigFile    string
	exportParallel      int
)

func init() {
	exportCmd.Flags().StringArrayVarP(&exportSnapshotFiles, "snapshot", "s", nil, "Path to snapshot JSON file (repeatable, required)")
	exportCmd.Flags().StringVarP(&exportOutputDir, "out-dir", "o", ".", "Directory for the exported PDF files")
	exportCmd.Flags().StringVarP(&exportConfigFile, "config", "c", "", "Path to JSON config file")
	exportCmd.Flags().IntVarP(&exportParallel, "parallel", "p", 2, "Number of exports run at once")

	if err := exportCmd.MarkFlagRequired("snapshot"); err != nil {
		panic(fmt.Sprintf("failed to mark snapshot flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportParallel < 1 {
		return fmt.Errorf("--parallel must be at least 1")
	}

	cfg, err := loadConfig(exportConfigFile)
	if err != nil {
		return err
	}
	renderer, err := newRenderer("")
	if err != nil {
		return err
	}
	assembler, err := newAssembler(cfg)
	if err != nil {
		return err
	}
	rasterizer := newRasterizer(cfg)
	opts := export.Options{Capture: captureOptions(cfg), Verbose: cfg.Verbose}

	var (
		mu      sync.Mutex
		printer = observability.NewPrinter(cmd.OutOrStdout())
		names   = newNameSet()
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(exportParallel)

	for _, path := range exportSnapshotFiles {
		g.Go(func() error {
			st, err := loadSnapshot(path)
			if err != nil {
				return err
			}

			start := time.Now()
			pipeline := export.New(staticSource{state: st}, renderer, rasterizer, assembler, opts)
			file, err := pipeline.Export(ctx, func(event export.ProgressEvent) {
				if cfg.Verbose {
					mu.Lock()
					printer.PrintProgress(event)
					mu.Unlock()
				}
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			outPath := filepath.Join(exportOutputDir, names.claim(file.Name))
			if err := writeOutput(outPath, file.Data); err != nil {
				return err
			}

			mu.Lock()
			printer.PrintExport(file, outPath, time.Since(start))
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

// nameSet hands out unique file names within one batch.
type nameSet struct {
	mu   sync.Mutex
	used map[string]int
}

func newNameSet() *nameSet {
	return &nameSet{used: make(map[string]int)}
}

// claim returns name, or name with a numeric suffix when it was already taken.
func (n *nameSet) claim(name string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := n.used[name]
	n.used[name] = count + 1
	if count == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), count+1, ext)
}
