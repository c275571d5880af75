// Package cmd implements the command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Conversational analytics over client feedback",
	Long: `chatbot answers natural-language questions about client feedback
recorded across emails, calls, and text messages. Questions are turned into
read-only SQL against PostgreSQL and the results are summarized back in
plain language.

Running chatbot with no arguments starts the HTTP API server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
