package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Pheonix-ctrl/Chatbot-Sentiment/cmd"
)

func main() {
	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
