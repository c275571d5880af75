package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (injected at build time via ldflags).
var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chatbot %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			fmt.Println("GEMINI_API_KEY: configured")
		} else {
			fmt.Println("GEMINI_API_KEY: not set")
			fmt.Println("Hint: export GEMINI_API_KEY=your-api-key")
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
