package pnl

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the normalized input to the aggregation, whether it came from the
// exchange API or the exported spreadsheet.
type Trade struct {
	Symbol          string          `json:"symbol"`
	RealizedPnl     decimal.Decimal `json:"realized_pnl"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commission_asset"`
	Time            time.Time       `json:"time"`
}

// Row is the per-token PnL breakdown. BNB-denominated fees are converted to
// USDC at the price passed to Calculate.
type Row struct {
	Token       string          `json:"token"`
	RealizedPnl decimal.Decimal `json:"realized_pnl"`
	BNBFees     decimal.Decimal `json:"bnb_fees"`
	BNBFeesUSDC decimal.Decimal `json:"bnb_fees_usdc"`
	DirectFees  decimal.Decimal `json:"direct_fees"`
	TotalFees   decimal.Decimal `json:"total_fees"`
	NetPnl      decimal.Decimal `json:"net_pnl"`
	Trades      int             `json:"trades"`
}

// Metrics summarizes the report for the dashboard header.
type Metrics struct {
	NetPnl         decimal.Decimal `json:"net_pnl"`
	TotalFees      decimal.Decimal `json:"total_fees"`
	Trades         int             `json:"trades"`
	AvgFeePerTrade decimal.Decimal `json:"avg_fee_per_trade"`
	NetPercent     decimal.Decimal `json:"net_percent"`
}

// Report is a full period analysis: per-token rows sorted by net PnL
// descending, the totals row, and header metrics.
type Report struct {
	Period      string          `json:"period"`
	GeneratedAt time.Time       `json:"generated_at"`
	Tokens      []string        `json:"tokens"`
	Rows        []Row           `json:"rows"`
	Total       Row             `json:"total"`
	Metrics     Metrics         `json:"metrics"`
	BNBPrice    decimal.Decimal `json:"bnb_price"`
	// Trades carries the raw input for the dashboard's raw-data view.
	Trades []Trade `json:"trades,omitempty"`
}

const TotalToken = "TOTAL"

var hundred = decimal.NewFromInt(100)

// Calculate aggregates trades per token. Fees paid in BNB convert to USDC at
// bnbPrice; fees already in USDC or USDT count directly. Net is realized
// minus total fees.
func Calculate(trades []Trade, bnbPrice decimal.Decimal) Report {
	report := Report{
		GeneratedAt: time.Now().UTC(),
		BNBPrice:    bnbPrice,
		Trades:      trades,
	}
	if len(trades) == 0 {
		return report
	}

	type bucket struct {
		realized decimal.Decimal
		bnbFees  decimal.Decimal
		usdFees  decimal.Decimal
		count    int
	}
	buckets := make(map[string]*bucket)
	for _, trade := range trades {
		b := buckets[trade.Symbol]
		if b == nil {
			b = &bucket{}
			buckets[trade.Symbol] = b
		}
		b.realized = b.realized.Add(trade.RealizedPnl)
		b.count++
		switch trade.CommissionAsset {
		case "BNB":
			b.bnbFees = b.bnbFees.Add(trade.Commission)
		case "USDC", "USDT":
			b.usdFees = b.usdFees.Add(trade.Commission)
		}
	}

	rows := make([]Row, 0, len(buckets))
	for symbol, b := range buckets {
		bnbFeesUSDC := b.bnbFees.Mul(bnbPrice)
		totalFees := bnbFeesUSDC.Add(b.usdFees)
		rows = append(rows, Row{
			Token:       symbol,
			RealizedPnl: b.realized.Round(2),
			BNBFees:     b.bnbFees.Round(5),
			BNBFeesUSDC: bnbFeesUSDC.Round(2),
			DirectFees:  b.usdFees.Round(2),
			TotalFees:   totalFees.Round(2),
			NetPnl:      b.realized.Sub(totalFees).Round(2),
			Trades:      b.count,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].NetPnl.Equal(rows[j].NetPnl) {
			return rows[i].NetPnl.GreaterThan(rows[j].NetPnl)
		}
		return rows[i].Token < rows[j].Token
	})

	total := Row{Token: TotalToken}
	for _, row := range rows {
		total.RealizedPnl = total.RealizedPnl.Add(row.RealizedPnl)
		total.BNBFees = total.BNBFees.Add(row.BNBFees)
		total.BNBFeesUSDC = total.BNBFeesUSDC.Add(row.BNBFeesUSDC)
		total.DirectFees = total.DirectFees.Add(row.DirectFees)
		total.TotalFees = total.TotalFees.Add(row.TotalFees)
		total.NetPnl = total.NetPnl.Add(row.NetPnl)
		total.Trades += row.Trades
	}

	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, row.Token)
	}
	sort.Strings(tokens)

	report.Tokens = tokens
	report.Rows = rows
	report.Total = total
	report.Metrics = metricsFor(total)
	return report
}

func metricsFor(total Row) Metrics {
	metrics := Metrics{
		NetPnl:    total.NetPnl,
		TotalFees: total.TotalFees,
		Trades:    total.Trades,
	}
	if total.Trades > 0 {
		metrics.AvgFeePerTrade = total.TotalFees.Div(decimal.NewFromInt(int64(total.Trades))).Round(2)
	}
	if !total.RealizedPnl.IsZero() {
		metrics.NetPercent = total.NetPnl.Div(total.RealizedPnl.Abs()).Mul(hundred).Round(1)
	}
	return metrics
}
