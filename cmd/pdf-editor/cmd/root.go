// Package cmd provides the CLI commands for the PDF editor service.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/config"
)

var cfgFile string

// v is the viper instance shared by all commands.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "pdf-editor",
	Short: "pdf-editor - session-based PDF editing service",
	Long: `pdf-editor is an HTTP service for editing PDF documents.

An uploaded document becomes a server-side session holding an open
document handle. Mutations run one at a time per session, persist on
completion, and idle sessions are reaped automatically.

Quick start:
  1. Optionally create a config file: pdf-editor.yaml
  2. Run: pdf-editor serve
  3. Upload: curl -F file=@doc.pdf localhost:8090/api/documents/upload

Configuration:
  Config is loaded from pdf-editor.yaml in the current directory,
  $HOME/.pdf-editor/, or /etc/pdf-editor/.

  Environment variables can override config values with the PDF_EDITOR_ prefix.
  Example: PDF_EDITOR_SERVER_HTTP_ADDR=:9090

Commands:
  serve       Start the editing service
  config      Show the effective configuration
  hash-key    Generate an argon2id hash for an API key
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pdf-editor.yaml)")
}

func initConfig() {
	if err := config.InitViper(v, cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
