package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

const sheetName = "Gradebook"

var columns = []string{"Assignment", "Submitted", "Graded", "Score", "Written Answer", "Feedback"}

type GradebookRenderer struct{}

func NewGradebookRenderer() *GradebookRenderer {
	return &GradebookRenderer{}
}

func (r *GradebookRenderer) Render(w io.Writer, classroomID, studentID int64, submissions []domain.Submission) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Gradebook classroom %d student %d", classroomID, studentID),
		Creator: "edumate-orchestrator",
	}); err != nil {
		return fmt.Errorf("set doc props: %w", err)
	}

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, sub := range submissions {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			assignmentTitle(sub),
			yesNo(sub.Submitted),
			yesNo(sub.Graded),
			scoreValue(sub.Score),
			sub.WrittenAnswer,
			feedbackValue(sub.Feedback),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 28); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "E", "F", 48); err != nil {
		return fmt.Errorf("set width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func assignmentTitle(sub domain.Submission) string {
	if title := sub.RubricTitle(); title != "" {
		return title
	}
	if id := sub.RubricID(); id != 0 {
		return fmt.Sprintf("Rubric %d", id)
	}
	return fmt.Sprintf("Submission %d", sub.ID)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func scoreValue(score *float64) any {
	if score == nil {
		return "N/A"
	}
	return *score
}

func feedbackValue(feedback *string) string {
	if feedback == nil {
		return ""
	}
	return *feedback
}
