package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fmuoria/AI-Interview-agent/internal/agent"
	"github.com/fmuoria/AI-Interview-agent/internal/export"
	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

var scoreXLSX string

var scoreCmd = &cobra.Command{
	Use:   "score <transcript.json>",
	Short: "Score a saved interview transcript",
	Long: `Score a transcript saved from the API. The file holds either the
questions array or an object with a "questions" field.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreXLSX, "xlsx", "", "Also write an Excel report to this path")
}

func runScore(cmd *cobra.Command, args []string) error {
	turns, err := readTranscript(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	screening, err := agent.FromConfig(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer screening.Close()

	score, err := screening.ScoreInterview(cmd.Context(), models.ScoreRequest{Questions: turns})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(score); err != nil {
		return err
	}

	if scoreXLSX == "" {
		return nil
	}
	path, err := export.ExportToExcel(models.InterviewReport{
		Turns:       turns,
		Complete:    true,
		Score:       &score,
		GeneratedAt: time.Now(),
	}, scoreXLSX)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
	return nil
}

// readTranscript accepts a bare questions array or a transcript response
func readTranscript(path string) ([]models.TurnView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var turns []models.TurnView
		if err := json.Unmarshal(data, &turns); err != nil {
			return nil, fmt.Errorf("failed to parse transcript: %w", err)
		}
		return turns, nil
	}

	var wrapped models.TranscriptResponse
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	return wrapped.Questions, nil
}
