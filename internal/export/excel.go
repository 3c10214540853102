package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/AI-Interview-agent/internal/models"
)

const (
	summarySheet    = "Summary"
	transcriptSheet = "Transcript"
	scoreSheet      = "Score Breakdown"
)

// Score band fill colors, best to worst
var bandColors = []string{"C6EFCE", "FFEB9C", "FFC7CE", "FF9999"}

// WriteInterviewReport renders an interview report workbook to w
func WriteInterviewReport(w io.Writer, report models.InterviewReport) error {
	f, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel workbook: %w", err)
	}
	return nil
}

// ExportToExcel generates an Excel file for an interview report and
// returns the path written
func ExportToExcel(report models.InterviewReport, outputPath string) (string, error) {
	f, err := buildWorkbook(report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}

	// Clean the path for cross-platform compatibility (Windows paths)
	outputPath = filepath.Clean(outputPath)

	// Try to save the file directly
	if err := f.SaveAs(outputPath); err != nil {
		// If direct save fails, try buffer write fallback
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}

		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return outputPath, nil
}

func buildWorkbook(report models.InterviewReport) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	sheets := []string{transcriptSheet}
	if report.Score != nil {
		sheets = append(sheets, scoreSheet)
	}
	for _, name := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	if err := createSummarySheet(f, st, report); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createTranscriptSheet(f, st, report.Turns); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create transcript sheet: %w", err)
	}
	if report.Score != nil {
		if err := createScoreSheet(f, st, *report.Score); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create score sheet: %w", err)
		}
	}

	return f, nil
}

type styles struct {
	title  int
	header int
	label  int
	wrap   int
	bands  []int
}

func newStyles(f *excelize.File) (*styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	var (
		st  styles
		err error
	)
	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return nil, err
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return nil, err
	}
	if st.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	if st.wrap, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    border,
	}); err != nil {
		return nil, err
	}
	for _, color := range bandColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    border,
		})
		if err != nil {
			return nil, err
		}
		st.bands = append(st.bands, id)
	}
	return &st, nil
}

// band returns the color band index for a 0-100 score
func band(score float64) int {
	switch {
	case score >= 90:
		return 0
	case score >= 70:
		return 1
	case score >= 50:
		return 2
	default:
		return 3
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// createSummarySheet writes session details and headline numbers
func createSummarySheet(f *excelize.File, st *styles, report models.InterviewReport) error {
	sheet := summarySheet
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 70)

	row := 1
	f.SetCellValue(sheet, cell("A", row), "Interview Report")
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), st.title)
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	row += 2

	answered := 0
	for _, t := range report.Turns {
		if t.UserResponse != nil {
			answered++
		}
	}
	status := "In progress"
	if report.Complete {
		status = "Complete"
	}

	rows := [][2]any{
		{"Session ID:", report.SessionID},
		{"Generated:", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Status:", status},
		{"Questions Asked:", len(report.Turns)},
		{"Questions Answered:", answered},
	}
	if report.Score != nil {
		rows = append(rows, [2]any{"Overall Score:", fmt.Sprintf("%.2f", report.Score.OverAll)})
	}
	for _, r := range rows {
		f.SetCellValue(sheet, cell("A", row), r[0])
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), st.label)
		f.SetCellValue(sheet, cell("B", row), r[1])
		row++
	}
	row++

	f.SetCellValue(sheet, cell("A", row), "Job Description:")
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), st.title)
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	row++
	f.SetCellValue(sheet, cell("A", row), report.JobDescription)
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), st.wrap)
	f.SetRowHeight(sheet, row, 120)

	return nil
}

// createTranscriptSheet lists every turn in order
func createTranscriptSheet(f *excelize.File, st *styles, turns []models.TurnView) error {
	sheet := transcriptSheet
	widths := map[string]float64{"A": 6, "B": 12, "C": 14, "D": 60, "E": 60, "F": 14, "G": 12, "H": 12}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	headers := []string{"#", "Difficulty", "Category", "Question", "Answer", "Expected Time", "Asked At", "Answered At"}
	for col, header := range headers {
		c := cell(string(rune('A'+col)), 1)
		f.SetCellValue(sheet, c, header)
		f.SetCellStyle(sheet, c, c, st.header)
	}

	for i, t := range turns {
		row := i + 2
		answer := ""
		if t.UserResponse != nil {
			answer = *t.UserResponse
		}
		values := []any{i + 1, string(t.Difficulty), string(t.Category), t.Question, answer, t.ActualTime, t.ResponseTime, t.CandidateAnsweredTime}
		for col, v := range values {
			f.SetCellValue(sheet, cell(string(rune('A'+col)), row), v)
		}
		f.SetCellStyle(sheet, cell("A", row), cell("H", row), st.wrap)
		f.SetRowHeight(sheet, row, 45)
	}

	if len(turns) > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:H%d", len(turns)+1), []excelize.AutoFilterOptions{})
	}

	// Freeze top row
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// createScoreSheet writes each score dimension with band coloring and the
// model's feedback
func createScoreSheet(f *excelize.File, st *styles, score models.InterviewScore) error {
	sheet := scoreSheet
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "C", 70)

	for col, header := range []string{"Dimension", "Score", "Comment"} {
		c := cell(string(rune('A'+col)), 1)
		f.SetCellValue(sheet, c, header)
		f.SetCellStyle(sheet, c, c, st.header)
	}

	comments := make(map[string]string, len(score.Feedback))
	for _, fb := range score.Feedback {
		comments[strings.ToLower(fb.Category)] = fb.Comment
	}

	dimensions := []struct {
		name    string
		value   float64
		keyword string
	}{
		{"Technical", score.Technical, "technical"},
		{"Communication", score.Communication, "communication"},
		{"Responsiveness", score.Responsiveness, "responsiveness"},
		{"Problem Solving", score.ProblemSolving, "problem"},
		{"Soft Skills", score.SoftSkills, "soft"},
		{"Responded", score.Responded, "responded"},
	}

	row := 2
	for _, d := range dimensions {
		f.SetCellValue(sheet, cell("A", row), d.name)
		f.SetCellValue(sheet, cell("B", row), fmt.Sprintf("%.2f", d.value))
		f.SetCellValue(sheet, cell("C", row), commentFor(comments, d.keyword))
		f.SetCellStyle(sheet, cell("A", row), cell("C", row), st.bands[band(d.value)])
		row++
	}

	f.SetCellValue(sheet, cell("A", row), "Overall (sum)")
	f.SetCellStyle(sheet, cell("A", row), cell("A", row), st.label)
	f.SetCellValue(sheet, cell("B", row), fmt.Sprintf("%.2f", score.OverAll))
	row += 2

	if len(score.SuggestedImprovements) > 0 {
		f.SetCellValue(sheet, cell("A", row), "Suggested Improvements")
		f.SetCellStyle(sheet, cell("A", row), cell("C", row), st.header)
		f.MergeCell(sheet, cell("A", row), cell("C", row))
		row++
		for _, s := range score.SuggestedImprovements {
			f.SetCellValue(sheet, cell("A", row), "- "+s)
			f.MergeCell(sheet, cell("A", row), cell("C", row))
			f.SetCellStyle(sheet, cell("A", row), cell("C", row), st.wrap)
			row++
		}
	}

	return nil
}

// commentFor finds the feedback whose category mentions keyword
func commentFor(comments map[string]string, keyword string) string {
	for category, comment := range comments {
		if strings.Contains(category, keyword) {
			return comment
		}
	}
	return ""
}
