package binance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"sashboard/internal/pnl"
)

// Trade is a futures account trade as returned by /fapi/v1/userTrades.
// Numeric fields arrive as strings on the wire.
type Trade struct {
	Symbol          string `json:"symbol"`
	ID              int64  `json:"id"`
	OrderID         int64  `json:"orderId"`
	Side            string `json:"side"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	RealizedPnl     string `json:"realizedPnl"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
}

// ToPnl converts a wire trade into the aggregation input type.
func (t Trade) ToPnl() (pnl.Trade, error) {
	realized, err := parseDecimal(t.RealizedPnl)
	if err != nil {
		return pnl.Trade{}, fmt.Errorf("trade %d realizedPnl: %w", t.ID, err)
	}
	commission, err := parseDecimal(t.Commission)
	if err != nil {
		return pnl.Trade{}, fmt.Errorf("trade %d commission: %w", t.ID, err)
	}
	return pnl.Trade{
		Symbol:          t.Symbol,
		RealizedPnl:     realized,
		Commission:      commission,
		CommissionAsset: t.CommissionAsset,
		Time:            time.UnixMilli(t.Time).UTC(),
	}, nil
}

func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol       string `json:"symbol"`
	ContractType string `json:"contractType"`
	QuoteAsset   string `json:"quoteAsset"`
	Status       string `json:"status"`
}

type tickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// APIError is a non-2xx response body from the exchange.
type APIError struct {
	Code       int    `json:"code"`
	Msg        string `json:"msg"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance api error %d (http %d): %s", e.Code, e.HTTPStatus, e.Msg)
}
