package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/home2l/pdflinkcheck/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/pdflinkcheck.yaml
var configTemplate embed.FS

// templatePath is the template location inside configTemplate.
const templatePath = "templates/pdflinkcheck.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a pdflinkcheck configuration file",
		Long: `Init writes a commented .pdflinkcheck configuration file.

The generated file lists the documents to check with their base
directories, the HTTP settings for external links, and ignore patterns.

Examples:
  # Create .pdflinkcheck in the current directory
  pdflinkcheck init

  # Create the file at a specific path
  pdflinkcheck init -o doc/linkcheck.yaml

  # Overwrite an existing file
  pdflinkcheck init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to set:")
	fmt.Fprintln(out, "  - the PDF documents to check and their base directories")
	fmt.Fprintln(out, "  - timeout, user agent and proxy for external links")
	fmt.Fprintln(out, "  - link targets to ignore")

	return nil
}
