package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fmuoria/AI-Interview-agent/internal/ingestion"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the text extracted from a PDF, DOCX or TXT resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	text, err := ingestion.NewDocumentExtractor().Extract(filepath.Base(path), "", data)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", path, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
