package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-wizard/internal/document"
	"github.com/jonathan/cv-wizard/internal/observability"
	"github.com/jonathan/cv-wizard/internal/rendering"
	"github.com/jonathan/cv-wizard/internal/types"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a snapshot as an HTML page",
	Long:  "Renders a saved wizard snapshot with its selected template, or the one given by --template, as a standalone HTML page or as the document tree in JSON.",
	RunE:  runRender,
}

var (
	renderSnapshotFile string
	renderOutputFile   string
	renderTemplateID   string
	renderPageTemplate string
	renderFormat       string
)

func init() {
	renderCmd.Flags().StringVarP(&renderSnapshotFile, "snapshot", "s", "", "Path to snapshot JSON file (required)")
	renderCmd.Flags().StringVarP(&renderOutputFile, "out", "o", "", "Path to output file (required)")
	renderCmd.Flags().StringVarP(&renderTemplateID, "template", "t", "", "Template id overriding the snapshot's selection")
	renderCmd.Flags().StringVar(&renderPageTemplate, "page-template", "", "Path to an HTML page template overriding the embedded one")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "Output format: html or json")

	if err := renderCmd.MarkFlagRequired("snapshot"); err != nil {
		panic(fmt.Sprintf("failed to mark snapshot flag as required: %v", err))
	}
	if err := renderCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	if renderFormat != "html" && renderFormat != "json" {
		return fmt.Errorf("unknown format %q: use html or json", renderFormat)
	}

	st, err := loadSnapshot(renderSnapshotFile)
	if err != nil {
		return err
	}
	if renderTemplateID != "" {
		st.SelectedTemplate = types.TemplateID(renderTemplateID)
	}
	if !st.HasTemplate() {
		return fmt.Errorf("%w: pass --template", types.ErrNoTemplate)
	}

	doc := document.Render(st)
	printer := observability.NewPrinter(cmd.OutOrStdout())
	if verbose {
		printer.PrintState(&st)
		printer.PrintDocument(doc)
	}

	var content []byte
	switch renderFormat {
	case "json":
		content, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document JSON: %w", err)
		}
	default:
		renderer, err := newRenderer(renderPageTemplate)
		if err != nil {
			return err
		}
		html, err := renderer.RenderHTML(doc, rendering.Title(st.PersonalDetails))
		if err != nil {
			return fmt.Errorf("failed to render HTML: %w", err)
		}
		content = []byte(html)
	}

	if err := writeOutput(renderOutputFile, content); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully rendered %s template\n", st.SelectedTemplate)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", renderOutputFile)
	return nil
}

func writeOutput(path string, content []byte) error {
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
