// Package main provides the entry point for the webscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webscan",
		Short: "Security testing tool for web applications",
		Long: `Webscan is a security testing tool for web applications.
It checks security headers, cookie flags, forms, DOM XSS sinks, mixed
content, client-side storage, and image metadata, and can drive a Burp
Suite instance for active scanning.

Scan modes degrade with the environment: browser-automation checks need
a host that can launch Chrome, and are skipped (with a report note) or
rejected on platforms that cannot.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
