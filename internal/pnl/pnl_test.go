package pnl

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateConvertsBNBFees(t *testing.T) {
	trades := []Trade{
		{Symbol: "BTCUSDC", RealizedPnl: dec("100"), Commission: dec("0.01"), CommissionAsset: "BNB"},
		{Symbol: "BTCUSDC", RealizedPnl: dec("-20"), Commission: dec("1.50"), CommissionAsset: "USDC"},
	}

	report := Calculate(trades, dec("600"))

	if len(report.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(report.Rows))
	}
	row := report.Rows[0]
	if !row.RealizedPnl.Equal(dec("80")) {
		t.Fatalf("unexpected realized: %s", row.RealizedPnl)
	}
	if !row.BNBFeesUSDC.Equal(dec("6")) {
		t.Fatalf("unexpected bnb fees in usdc: %s", row.BNBFeesUSDC)
	}
	if !row.TotalFees.Equal(dec("7.5")) {
		t.Fatalf("unexpected total fees: %s", row.TotalFees)
	}
	if !row.NetPnl.Equal(dec("72.5")) {
		t.Fatalf("unexpected net: %s", row.NetPnl)
	}
	if row.Trades != 2 {
		t.Fatalf("unexpected trade count: %d", row.Trades)
	}
}

func TestCalculateCountsUSDTFeesDirect(t *testing.T) {
	trades := []Trade{
		{Symbol: "ETHUSDC", RealizedPnl: dec("10"), Commission: dec("0.5"), CommissionAsset: "USDT"},
	}
	report := Calculate(trades, dec("600"))
	if !report.Rows[0].DirectFees.Equal(dec("0.5")) {
		t.Fatalf("USDT fees should count directly: %s", report.Rows[0].DirectFees)
	}
}

func TestCalculateIgnoresUnknownFeeAssets(t *testing.T) {
	trades := []Trade{
		{Symbol: "ETHUSDC", RealizedPnl: dec("10"), Commission: dec("0.5"), CommissionAsset: "ETH"},
	}
	report := Calculate(trades, dec("600"))
	if !report.Rows[0].TotalFees.IsZero() {
		t.Fatalf("unknown fee asset should not count: %s", report.Rows[0].TotalFees)
	}
}

func TestCalculateSortsByNetDescending(t *testing.T) {
	trades := []Trade{
		{Symbol: "AAAUSDC", RealizedPnl: dec("5")},
		{Symbol: "BBBUSDC", RealizedPnl: dec("50")},
		{Symbol: "CCCUSDC", RealizedPnl: dec("-10")},
	}
	report := Calculate(trades, dec("600"))

	order := []string{"BBBUSDC", "AAAUSDC", "CCCUSDC"}
	for i, expected := range order {
		if report.Rows[i].Token != expected {
			t.Fatalf("unexpected order: %v", report.Rows)
		}
	}
	// Tokens list stays alphabetical for display.
	if report.Tokens[0] != "AAAUSDC" || report.Tokens[2] != "CCCUSDC" {
		t.Fatalf("tokens should be alphabetical: %v", report.Tokens)
	}
}

func TestCalculateTotalsAndMetrics(t *testing.T) {
	trades := []Trade{
		{Symbol: "AAAUSDC", RealizedPnl: dec("100"), Commission: dec("2"), CommissionAsset: "USDC"},
		{Symbol: "BBBUSDC", RealizedPnl: dec("-40"), Commission: dec("2"), CommissionAsset: "USDC"},
	}
	report := Calculate(trades, dec("600"))

	if report.Total.Token != TotalToken {
		t.Fatalf("unexpected total token: %q", report.Total.Token)
	}
	if !report.Total.RealizedPnl.Equal(dec("60")) {
		t.Fatalf("unexpected total realized: %s", report.Total.RealizedPnl)
	}
	if !report.Total.NetPnl.Equal(dec("56")) {
		t.Fatalf("unexpected total net: %s", report.Total.NetPnl)
	}
	if report.Total.Trades != 2 {
		t.Fatalf("unexpected total trades: %d", report.Total.Trades)
	}

	if !report.Metrics.AvgFeePerTrade.Equal(dec("2")) {
		t.Fatalf("unexpected avg fee: %s", report.Metrics.AvgFeePerTrade)
	}
	// 56 / |60| * 100 = 93.3
	if !report.Metrics.NetPercent.Equal(dec("93.3")) {
		t.Fatalf("unexpected net percent: %s", report.Metrics.NetPercent)
	}
}

func TestCalculateEmpty(t *testing.T) {
	report := Calculate(nil, dec("600"))
	if len(report.Rows) != 0 || report.Total.Trades != 0 {
		t.Fatalf("empty input should yield empty report: %+v", report)
	}
	if !report.Metrics.NetPercent.IsZero() {
		t.Fatal("zero realized must not divide")
	}
}

func TestParsePeriod(t *testing.T) {
	cases := map[string]Period{
		"":              PeriodToday,
		"today":         PeriodToday,
		"mtd":           PeriodMonthToDate,
		"Month-To-Date": PeriodMonthToDate,
	}
	for input, expected := range cases {
		period, err := ParsePeriod(input)
		if err != nil || period != expected {
			t.Fatalf("ParsePeriod(%q) = %q, %v", input, period, err)
		}
	}
	if _, err := ParsePeriod("yearly"); err == nil {
		t.Fatal("unknown period should error")
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2025, time.March, 15, 13, 45, 30, 0, time.UTC)

	if got := PeriodToday.Start(now); !got.Equal(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day start: %v", got)
	}
	if got := PeriodMonthToDate.Start(now); !got.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected month start: %v", got)
	}

	// Non-UTC input must resolve in UTC.
	loc := time.FixedZone("plus5", 5*3600)
	local := time.Date(2025, time.March, 15, 2, 0, 0, 0, loc)
	if got := PeriodToday.Start(local); got.Day() != 14 {
		t.Fatalf("expected UTC day boundary, got %v", got)
	}
}
