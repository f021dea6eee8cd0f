package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	revenue "clientdesk/internal/revenue/domain"
)

const dateLayout = "2006-01-02"

// BuildStatementPDF renders a minimal PDF for a statement.
func BuildStatementPDF(stmt *revenue.Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Recurring Revenue Statement")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Month: %s", stmt.Month.Format("2006-01")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", stmt.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total: %.2f", stmt.Total))
	pdf.Ln(8)

	// Lines table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Client", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Effective Start", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "End", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, line := range stmt.Lines {
		end := ""
		if line.EndDate != nil {
			end = line.EndDate.Format(dateLayout)
		}
		pdf.CellFormat(60, 6, line.ClientName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", line.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, line.EffectiveStart.Format(dateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, end, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStatementXLSX renders a minimal XLSX for a statement.
func BuildStatementXLSX(stmt *revenue.Statement) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	linesSheet := "lines"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(linesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Recurring Revenue Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Month")
	_ = f.SetCellValue(summarySheet, "B3", stmt.Month.Format("2006-01"))
	_ = f.SetCellValue(summarySheet, "A4", "Lines")
	_ = f.SetCellValue(summarySheet, "B4", len(stmt.Lines))
	_ = f.SetCellValue(summarySheet, "A5", "Total")
	_ = f.SetCellValue(summarySheet, "B5", stmt.Total)
	_ = f.SetCellValue(summarySheet, "A6", "Generated")
	_ = f.SetCellValue(summarySheet, "B6", stmt.GeneratedAt.Format(time.RFC3339))

	_ = f.SetCellValue(linesSheet, "A1", "Implementation")
	_ = f.SetCellValue(linesSheet, "B1", "Client")
	_ = f.SetCellValue(linesSheet, "C1", "Amount")
	_ = f.SetCellValue(linesSheet, "D1", "Effective Start")
	_ = f.SetCellValue(linesSheet, "E1", "End")
	for i, line := range stmt.Lines {
		row := i + 2
		end := ""
		if line.EndDate != nil {
			end = line.EndDate.Format(dateLayout)
		}
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("A%d", row), line.ImplementationID)
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("B%d", row), line.ClientName)
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("C%d", row), line.Amount)
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("D%d", row), line.EffectiveStart.Format(dateLayout))
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("E%d", row), end)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
