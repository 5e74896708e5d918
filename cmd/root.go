package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fleetinvoice/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "fleetinvoice",
	Short: "fleetinvoice - extract and reconcile fleet leasing invoices",
	Long: `fleetinvoice is a command-line tool for processing vehicle leasing invoices.

It extracts structured data (invoice number, date, VAT rate, net amount) from
PDF invoices using direct text extraction with an OCR fallback and an AI
oracle, reconciles each invoice against a supplied transaction file, and
produces a formatted Excel report per invoice.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to fleetinvoice!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
