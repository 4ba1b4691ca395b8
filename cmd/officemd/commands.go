// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/docscope/officemd/internal/batch"
	"github.com/docscope/officemd/internal/preview"
	"github.com/docscope/officemd/internal/tool"
)

func newTextCmd(a *app) *cobra.Command {
	var delimiter string
	cmd := &cobra.Command{
		Use:   "text FILE",
		Short: "Render a document as Markdown-flavored text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("delimiter") {
				delimiter = a.cfg.Delimiter
			}
			text := a.dispatcher().RenderToText(doc, delimiter)
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			return writeOut(cmd, text)
		},
	}
	cmd.Flags().StringVar(&delimiter, "delimiter", "\n", "line delimiter between blocks")
	return cmd
}

func newJSONCmd(a *app) *cobra.Command {
	var indent int
	cmd := &cobra.Command{
		Use:   "json FILE",
		Short: "Print the structured JSON projection of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			if indent > 0 {
				enc.SetIndent("", strings.Repeat(" ", indent))
			}
			if err := enc.Encode(a.dispatcher().RenderToJSON(doc)); err != nil {
				return fmt.Errorf("encode json: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&indent, "indent", 2, "spaces per indentation level, 0 for compact output")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	var (
		out      string
		sanitize bool
	)
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Render a document as a standalone HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.load(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("sanitize") {
				sanitize = a.cfg.Preview.Sanitize
			}
			body, err := preview.New(preview.WithSanitize(sanitize)).HTML(a.dispatcher().RenderToText(doc, "\n"))
			if err != nil {
				return err
			}
			page, err := preview.Page(a.cfg.Preview.Title, body)
			if err != nil {
				return err
			}
			if out == "" {
				return writeOut(cmd, string(page))
			}
			if err := os.WriteFile(out, page, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.logger.Info("preview written", "path", out, "bytes", len(page))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the page to this file instead of stdout")
	cmd.Flags().BoolVar(&sanitize, "sanitize", true, "strip unsafe HTML (overrides config)")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Render many documents concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}
			runner := batch.New(batch.Options{
				Delimiter: a.cfg.Delimiter,
				Workers:   workers,
				MaxDepth:  a.cfg.MaxDepth,
				Logger:    a.logger,
			})
			results, err := runner.Run(cmd.Context(), args)
			if err != nil {
				return err
			}

			var sb strings.Builder
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Path, res.Err)
					continue
				}
				fmt.Fprintf(&sb, "==> %s (%s) <==\n%s\n\n", res.Path, res.Renderer, strings.TrimRight(res.Text, "\n"))
			}
			if err := writeOut(cmd, sb.String()); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent workers (overrides config)")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the renderers as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mcp.NewServer(&mcp.Implementation{Name: "officemd", Version: version}, nil)
			tool.RegisterAll(srv)
			a.logger.Info("serving MCP over stdio")
			if err := srv.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
