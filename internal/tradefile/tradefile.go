package tradefile

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"sashboard/internal/pnl"
)

// Column names in the exported trade-history spreadsheet.
const (
	colDate     = "Date(UTC)"
	colSymbol   = "Symbol"
	colRealized = "Realized Profit"
	colFee      = "Fee"
	colFeeCoin  = "Fee Coin"
)

var requiredColumns = []string{colDate, colSymbol, colRealized, colFee}

// The export writes dates as text in UTC.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01-02-06 15:04",
}

// Load parses the exported trade-history spreadsheet and returns the trades
// at or after start. Numeric cells are normalized: a leading apostrophe and
// thousands separators are stripped, blanks count as zero. A missing Fee Coin
// column defaults to USDC.
func Load(path string, start time.Time) ([]pnl.Trade, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open trade history: %w", err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("trade history %s has no sheets", path)
	}
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("trade history %s is empty", path)
	}

	columns, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	start = start.UTC()
	trades := make([]pnl.Trade, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		trade, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if trade.Time.Before(start) {
			continue
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func headerIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("trade history is missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func parseRow(row []string, columns map[string]int) (pnl.Trade, error) {
	when, err := parseDate(cell(row, columns, colDate))
	if err != nil {
		return pnl.Trade{}, err
	}
	realized, err := parseNumber(cell(row, columns, colRealized))
	if err != nil {
		return pnl.Trade{}, fmt.Errorf("%s: %w", colRealized, err)
	}
	fee, err := parseNumber(cell(row, columns, colFee))
	if err != nil {
		return pnl.Trade{}, fmt.Errorf("%s: %w", colFee, err)
	}
	feeCoin := strings.TrimSpace(cell(row, columns, colFeeCoin))
	if feeCoin == "" {
		feeCoin = "USDC"
	}
	return pnl.Trade{
		Symbol:          strings.TrimSpace(cell(row, columns, colSymbol)),
		RealizedPnl:     realized,
		Commission:      fee,
		CommissionAsset: feeCoin,
		Time:            when,
	}, nil
}

func cell(row []string, columns map[string]int, name string) string {
	index, ok := columns[name]
	if !ok || index >= len(row) {
		return ""
	}
	return row[index]
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty %s", colDate)
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized %s value %q", colDate, value)
}

func parseNumber(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "'")
	value = strings.ReplaceAll(value, ",", "")
	if value == "" || strings.EqualFold(value, "nan") || strings.EqualFold(value, "none") {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad number %q", value)
	}
	return parsed, nil
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
