package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-assistant/internal/extract"
)

var extractFile string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract plain text from a PDF, DOCX or TXT file",
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "Path to the document (required)")
	_ = extractCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, err := readDocument(cmd.Context(), extractFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// readDocument loads a local file and runs it through the same extractor as uploads.
func readDocument(ctx context.Context, path string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	mimeType := extract.ResolveMimeType("", name, data)
	text, err := extract.ExtractTextFromBytes(ctx, data, mimeType, name)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, nil
}
