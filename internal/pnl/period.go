package pnl

import (
	"fmt"
	"strings"
	"time"
)

// Period selects which slice of trading history a report covers.
type Period string

const (
	PeriodToday       Period = "today"
	PeriodMonthToDate Period = "mtd"
)

// ParsePeriod normalizes a period token from the API.
func ParsePeriod(value string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(PeriodToday):
		return PeriodToday, nil
	case string(PeriodMonthToDate), "month-to-date":
		return PeriodMonthToDate, nil
	default:
		return "", fmt.Errorf("unknown period %q", value)
	}
}

// Start returns the UTC beginning of the period containing now.
func (p Period) Start(now time.Time) time.Time {
	now = now.UTC()
	switch p {
	case PeriodMonthToDate:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
}
