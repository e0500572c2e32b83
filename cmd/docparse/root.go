package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docparse/internal/api"
	"github.com/jackzampolin/docparse/internal/config"
	"github.com/jackzampolin/docparse/internal/home"
	"github.com/jackzampolin/docparse/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docparse",
	Short: "Identity document OCR workflow",
	Long: `docparse extracts identity details from photographs of a document.

Select an image for the front and the back, send both to the OCR
service, review the extracted fields, then save or reset them:
  - Name, date of birth, gender, address and pincode
  - The last saved record is restored when the server starts
  - A browser page and an HTTP API drive the same workflow`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docparse/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "docparse home directory (default: ~/.docparse)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format and load .env before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := api.SetOutputFormat(outputFormat); err != nil {
			return err
		}
		return config.LoadDotEnv(".env")
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory manager, creating it if needed.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// getConfig loads configuration from --config, ./config.yaml or the home directory.
func getConfig(h *home.Dir) (*config.Manager, error) {
	return config.NewManager(cfgFile, h.Path())
}
