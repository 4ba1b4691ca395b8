// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docscope/officemd/internal/config"
	"github.com/docscope/officemd/internal/document"
	"github.com/docscope/officemd/internal/render"
)

// app holds state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "officemd",
		Short: "Render parsed office documents to Markdown, JSON and HTML",
		Long: `officemd renders document trees produced by an office parser (docx, xlsx,
pptx, pdf and others) serialized as JSON or YAML.

Examples:
  officemd text report.json
  officemd json sheet.yaml --indent 4
  officemd preview slides.json --out slides.html
  officemd batch docs/*.json --workers 8
  officemd serve`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")

	root.AddCommand(
		newTextCmd(a),
		newJSONCmd(a),
		newPreviewCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if _, err := config.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

func (a *app) dispatcher() *render.Dispatcher {
	return render.NewDispatcher(render.WithMaxDepth(a.cfg.MaxDepth))
}

// load reads one document file and warns when it nests past the render
// depth limit.
func (a *app) load(path string) (*document.ParsedDocument, error) {
	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := document.CheckDepth(doc, a.cfg.MaxDepth); err != nil {
		a.logger.Warn("tree truncated while rendering", "path", path, "error", err)
	}
	a.logger.Debug("document loaded", "path", path, "type", doc.Type, "nodes", len(doc.Content))
	return doc, nil
}

func writeOut(cmd *cobra.Command, s string) error {
	if _, err := fmt.Fprint(cmd.OutOrStdout(), s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
