package revenue

import (
	"sort"
	"time"

	implementations "clientdesk/internal/implementations/domain"
)

// Line is one recurrence-eligible implementation on a statement.
type Line struct {
	ImplementationID string
	ClientName       string
	Amount           float64
	EffectiveStart   time.Time
	EndDate          *time.Time
}

// Statement is a monthly recurring-revenue statement. It is derived on
// demand from the implementation rows and never persisted.
type Statement struct {
	UserID      string
	Month       time.Time
	Lines       []Line
	Total       float64
	GeneratedAt time.Time
}

// BuildStatement derives the statement for the month containing month.
// One line per implementation whose recurrence is eligible that month,
// sorted by client name. The total is the same sum the dashboard shows
// for the month.
func BuildStatement(userID string, month time.Time, impls []implementations.Implementation, now time.Time) Statement {
	monthStart := implementations.MonthStart(month)

	lines := make([]Line, 0, len(impls))
	var total float64
	for _, impl := range impls {
		if !impl.ActiveForMonth(monthStart) {
			continue
		}
		lines = append(lines, Line{
			ImplementationID: impl.ID,
			ClientName:       impl.ClientName,
			Amount:           impl.RecurringAmount,
			EffectiveStart:   impl.EffectiveStart(),
			EndDate:          impl.EndDate,
		})
		total += impl.RecurringAmount
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ClientName == lines[j].ClientName {
			return lines[i].ImplementationID < lines[j].ImplementationID
		}
		return lines[i].ClientName < lines[j].ClientName
	})

	return Statement{
		UserID:      userID,
		Month:       monthStart,
		Lines:       lines,
		Total:       total,
		GeneratedAt: now.UTC(),
	}
}
