package interfaces

import (
	"bytes"
	"testing"
	"time"

	revenue "clientdesk/internal/revenue/domain"
)

func sampleStatement() *revenue.Statement {
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	return &revenue.Statement{
		UserID: "user-1",
		Month:  time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		Lines: []revenue.Line{
			{
				ImplementationID: "impl-1",
				ClientName:       "Acme",
				Amount:           120.5,
				EffectiveStart:   time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
				EndDate:          &end,
			},
			{
				ImplementationID: "impl-2",
				ClientName:       "Borealis",
				Amount:           80,
				EffectiveStart:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		Total:       200.5,
		GeneratedAt: time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildStatementPDF(t *testing.T) {
	data, err := BuildStatementPDF(sampleStatement())
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty pdf")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("expected pdf header")
	}
}

func TestBuildStatementXLSX(t *testing.T) {
	data, err := BuildStatementXLSX(sampleStatement())
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty xlsx")
	}
	// XLSX is a zip container.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("expected zip header")
	}
}

func TestBuildStatementPDFEmptyLines(t *testing.T) {
	stmt := sampleStatement()
	stmt.Lines = nil
	stmt.Total = 0

	data, err := BuildStatementPDF(stmt)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty pdf")
	}
}
