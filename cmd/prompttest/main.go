package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prompttest",
	Short: "Exercise the resume assistant pipeline from the command line",
	Long: `prompttest runs individual steps of the resume assistant locally:
document extraction, prompt rendering, quiz generation and session cleanup.`,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
