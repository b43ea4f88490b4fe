package pdfquiz

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

var optionLetters = []string{"A", "B", "C", "D"}

// ExportJSON renders a quiz's questions as two-space indented JSON
func ExportJSON(item QuizItem) (string, error) {
	questions := item.Questions
	if questions == nil {
		questions = []Question{}
	}
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal quiz %s: %w", item.ID, err)
	}
	return string(data), nil
}

// ExportPDF writes a printable worksheet for a quiz. With answers set, an
// answer key with every option explanation follows the questions.
func ExportPDF(w io.Writer, item QuizItem, withAnswers bool) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(item.Title), false)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr(item.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	subtitle := fmt.Sprintf("%d questions | created %s", len(item.Questions), item.CreatedAt.Format("2006-01-02"))
	if item.FileName != "" {
		subtitle = item.FileName + " | " + subtitle
	}
	pdf.CellFormat(0, 6, tr(subtitle), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for i, q := range item.Questions {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, q.Question)), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		for j, opt := range q.Options {
			pdf.SetX(26)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s) %s", letter(j), opt.Text)), "", "L", false)
		}
		if q.Hint != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetX(26)
			pdf.MultiCell(0, 5, tr("Hint: "+q.Hint), "", "L", false)
		}
		pdf.Ln(4)
	}

	if withAnswers {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, "Answer Key", "", 1, "L", false, 0, "")
		pdf.Ln(2)
		for i, q := range item.Questions {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, letter(q.CorrectIndex()))), "", "L", false)
			pdf.SetFont("Helvetica", "", 9)
			for j, opt := range q.Options {
				mark := "x"
				if opt.Correct {
					mark = "+"
				}
				pdf.SetX(26)
				pdf.MultiCell(0, 5, tr(fmt.Sprintf("[%s] %s: %s", mark, letter(j), opt.Explanation)), "", "L", false)
			}
			pdf.Ln(2)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render quiz PDF: %w", err)
	}
	return nil
}

func letter(i int) string {
	if i < 0 || i >= len(optionLetters) {
		return "?"
	}
	return optionLetters[i]
}
