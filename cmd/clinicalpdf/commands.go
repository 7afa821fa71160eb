// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/medlit/clinical-pdf-intel/internal/batch"
	"github.com/medlit/clinical-pdf-intel/internal/clinical"
	"github.com/medlit/clinical-pdf-intel/internal/clinical/extractors"
	"github.com/medlit/clinical-pdf-intel/internal/config"
	"github.com/medlit/clinical-pdf-intel/internal/loader"
	"github.com/medlit/clinical-pdf-intel/internal/metrics"
	"github.com/medlit/clinical-pdf-intel/internal/output"
	"github.com/medlit/clinical-pdf-intel/internal/store"
	"github.com/medlit/clinical-pdf-intel/internal/tool"
)

const version = "0.1.0"

// app carries the settings resolved by the root command.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "clinicalpdf",
		Short: "Clinical document classification, extraction and chunking",
		Long: `clinicalpdf reads clinical PDFs and text exports, classifies each document
(case report, textbook, guideline, discharge summary, research article,
lab report, radiology report), extracts type-specific fields and splits the
text into overlapping chunks for vector indexing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = slog.New(cfg.Log.Handler(cmd.ErrOrStderr()))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")

	root.AddCommand(a.processCmd(), a.classifyCmd(), a.serveCmd())
	return root
}

func newProcessor() *clinical.Processor {
	return clinical.NewProcessor(extractors.Default()...)
}

func (a *app) processCmd() *cobra.Command {
	var outputDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "process [paths...]",
		Short: "Process files and directories of clinical documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output-dir") {
				a.cfg.OutputDir = outputDir
			}
			if cmd.Flags().Changed("workers") {
				a.cfg.Workers = workers
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runProcess(cmd, args)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for per-document folders and batch reports")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Documents processed in parallel")
	return cmd
}

func (a *app) runProcess(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	loaders := loader.Default(cfg.MaxFileBytes)

	paths, err := loaders.Discover(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported documents found")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	opts := batch.Options{
		Workers: cfg.Workers,
		Metrics: metrics.NewRecorder(),
		Logger:  a.logger,
	}
	if cfg.WriteArtifacts {
		opts.Writer = output.NewWriter(cfg.OutputDir)
	}
	if cfg.IndexDB != "" {
		idx, err := store.Open(under(cfg.OutputDir, cfg.IndexDB))
		if err != nil {
			return err
		}
		defer idx.Close()
		opts.Store = idx
	}

	runner := batch.NewRunner(loaders, newProcessor(), opts)
	report := runner.Run(cmd.Context(), clinical.Report{}, paths)

	if err := runner.WriteReports(report, batch.ReportPaths{
		XLSX:    under(cfg.OutputDir, cfg.XLSXReport),
		Metrics: under(cfg.OutputDir, cfg.MetricsFile),
	}); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}

	summary := report.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "processed %d, failed %d\n", summary.TotalProcessed, summary.TotalFailed)
	for _, t := range report.TypesInOrder() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", t, summary.ByType[t])
	}
	return nil
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [path]",
		Short: "Classify a single document and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := loader.Default(a.cfg.MaxFileBytes).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result := newProcessor().Classify(src.Text, src.PageCount)
			params := clinical.ChunkParamsFor(result.Type)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"file":          filepath.Base(src.Path),
				"pages":         src.PageCount,
				"document_type": result.Type,
				"confidence":    result.Confidence,
				"chunk_size":    params.Size,
				"chunk_overlap": params.Overlap,
			})
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the clinical tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := mcp.NewServer(&mcp.Implementation{Name: "clinicalpdf", Version: version}, nil)
			tool.Register(srv)
			a.logger.Info("mcp.serve", "transport", "stdio", "version", version)
			return srv.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

// under resolves a relative artifact path inside the output directory.
func under(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
