package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brunobiangulo/pdfoutline"
	"github.com/brunobiangulo/pdfoutline/batch"
)

var (
	inputDir   string
	outputDir  string
	reportPath string
	force      bool
	maxWorkers int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract outlines for every PDF in a directory",
	Long: `Run processes every .pdf file directly inside the input directory and writes
<name>.json for each into the output directory. Failed documents are logged
and skipped; the run always completes. Interrupting stops new documents from
starting and lets running ones finish.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("report") {
			cfg.ReportPath = reportPath
		}
		if cmd.Flags().Changed("force") {
			cfg.Force = force
		}
		if cmd.Flags().Changed("workers") {
			cfg.MaxWorkers = maxWorkers
		}

		ex, err := pdfoutline.New(cfg)
		if err != nil {
			return err
		}
		defer ex.Close()

		var opts []batch.RunnerOption
		if s := ex.Store(); s != nil {
			opts = append(opts, batch.WithLedger(s))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, runErr := batch.NewRunner(ex, cfg, opts...).Run(ctx, inputDir, outputDir)
		if summary != nil {
			printSummary(cmd.OutOrStdout(), summary)
		}
		return runErr
	},
}

func init() {
	runCmd.Flags().StringVarP(&inputDir, "input", "i", "input", "Directory containing PDF files")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "Directory for JSON outlines")
	runCmd.Flags().StringVar(&reportPath, "report", "", "Write an XLSX run report to this path")
	runCmd.Flags().BoolVar(&force, "force", false, "Ignore stored outlines and re-extract")
	runCmd.Flags().IntVarP(&maxWorkers, "workers", "w", 0, "Maximum concurrent documents (overrides config)")

	rootCmd.AddCommand(runCmd)
}
