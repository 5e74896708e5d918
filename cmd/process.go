package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fleetinvoice/internal/batch"
	"fleetinvoice/internal/config"
	"fleetinvoice/internal/logger"
)

var processCmd = &cobra.Command{
	Use:   "process [invoice-pdfs-or-dir...]",
	Short: "Process a batch of invoices into reconciled XLSX reports",
	Long: `Process invoice PDFs against their transaction detail files.

For every invoice the pipeline acquires text (with OCR fallback for scans),
extracts a structured summary through the configured backend, matches the
invoice to its transaction file by the identifier in the file names, joins the
per-vehicle rows with the invoice fields, and writes one formatted XLSX report
per invoice into the output directory.

A failing invoice does not stop the batch: it is reported at the end while the
remaining invoices are processed. The run aborts early only when the OCR
engine is missing or the extraction backend rejects the credentials, since
those failures would repeat for every document.`,
	Example: `  # Process every PDF in a directory
  fleetinvoice process ./invoices -t ./transactions -o ./reports

  # Process selected files
  fleetinvoice process inv1.pdf inv2.pdf -t ./transactions -o ./reports`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("transactions", "t", "", "Directory with transaction detail files (required)")
	processCmd.Flags().StringP("output", "o", ".", "Directory for generated reports")
	processCmd.Flags().Int("timeout", 1800, "Batch timeout in seconds")

	_ = processCmd.MarkFlagRequired("transactions")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")

	transactionsDir, _ := cmd.Flags().GetString("transactions")
	outputDir, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	invoices, err := collectInvoices(args)
	if err != nil {
		return err
	}
	if len(invoices) == 0 {
		return fmt.Errorf("no invoice PDFs found in %s", strings.Join(args, ", "))
	}

	transactions, err := collectTransactions(transactionsDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cfg := config.Load()
	if err := probeOCREngine(cfg); err != nil {
		return handleAcquireError(err)
	}

	ctx, cancel := signalContext(time.Duration(timeoutSecs) * time.Second)
	defer cancel()

	acquirer, err := buildAcquirer(ctx, cfg)
	if err != nil {
		return err
	}
	extractor, err := buildExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	pipeline := batch.NewPipeline(acquirer, extractor, cfg.VATPercent)

	log.Info().
		Int("invoices", len(invoices)).
		Int("transaction_files", len(transactions)).
		Str("output_dir", outputDir).
		Msg("Starting batch processing")

	start := time.Now()
	res, runErr := pipeline.Run(ctx, invoices, transactions)

	written := 0
	for name, data := range res.Reports {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			res.Errors[name] = fmt.Sprintf("failed to write report: %v", err)
			continue
		}
		written++
	}

	printBatchSummary(res, written, time.Since(start))

	if runErr != nil {
		return fmt.Errorf("batch aborted: %w", runErr)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d of %d invoices failed", len(res.Errors), len(invoices))
	}
	return nil
}

// collectInvoices expands the command arguments into invoice files: plain
// paths are used as-is, directories contribute every *.pdf inside them.
func collectInvoices(args []string) ([]batch.File, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(arg, "*.pdf"))
			if err != nil {
				return nil, err
			}
			sort.Strings(matches)
			paths = append(paths, matches...)
			continue
		}
		paths = append(paths, arg)
	}

	files := make([]batch.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, batch.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// collectTransactions reads every table file (.csv, .xlsx and friends) from
// the transactions directory.
func collectTransactions(dir string) ([]batch.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read transactions directory: %w", err)
	}

	var files []batch.File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".xlsm", ".xls":
		default:
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		files = append(files, batch.File{Name: entry.Name(), Data: data})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no transaction files found in %s", dir)
	}
	return files, nil
}

func printBatchSummary(res *batch.Result, written int, dur time.Duration) {
	fmt.Printf("\n=== Batch Summary ===\n")
	fmt.Printf("Reports written: %d\n", written)
	fmt.Printf("Skipped (no match): %d\n", len(res.Skipped))
	fmt.Printf("Failed: %d\n", len(res.Errors))
	fmt.Printf("Duration: %s\n", dur.Round(time.Millisecond))

	if len(res.Skipped) > 0 {
		fmt.Printf("\nSkipped invoices:\n")
		for _, name := range res.Skipped {
			fmt.Printf("  %s\n", name)
		}
	}
	if len(res.Errors) > 0 {
		names := make([]string, 0, len(res.Errors))
		for name := range res.Errors {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("\nFailures:\n")
		for _, name := range names {
			fmt.Printf("  %s: %s\n", name, res.Errors[name])
		}
	}
}
