package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sashboard/internal/pnl"
)

var errTest = errors.New("api down")

type fakeExchange struct {
	trades      []pnl.Trade
	tradesErr   error
	price       decimal.Decimal
	priceErr    error
	tradesCalls int
}

func (f *fakeExchange) TradesSince(ctx context.Context, start time.Time) ([]pnl.Trade, error) {
	f.tradesCalls++
	return f.trades, f.tradesErr
}

func (f *fakeExchange) TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if f.priceErr != nil {
		return decimal.Zero, f.priceErr
	}
	return f.price, nil
}

func sampleTrades() []pnl.Trade {
	return []pnl.Trade{{
		Symbol:          "BTCUSDC",
		RealizedPnl:     decimal.NewFromInt(10),
		Commission:      decimal.NewFromInt(1),
		CommissionAsset: "USDC",
	}}
}

func TestReportToday(t *testing.T) {
	exchange := &fakeExchange{trades: sampleTrades(), price: decimal.NewFromInt(600)}
	service := NewService(ServiceOptions{Exchange: exchange})

	report, err := service.Report(context.Background(), pnl.PeriodToday, false)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Period != "today" {
		t.Fatalf("unexpected period: %q", report.Period)
	}
	if len(report.Rows) != 1 || report.Rows[0].Token != "BTCUSDC" {
		t.Fatalf("unexpected rows: %+v", report.Rows)
	}
	if !report.BNBPrice.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("unexpected bnb price: %s", report.BNBPrice)
	}
}

func TestReportCaches(t *testing.T) {
	exchange := &fakeExchange{trades: sampleTrades(), price: decimal.NewFromInt(600)}
	service := NewService(ServiceOptions{Exchange: exchange, CacheTTL: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := service.Report(context.Background(), pnl.PeriodToday, false); err != nil {
			t.Fatalf("report: %v", err)
		}
	}
	if exchange.tradesCalls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", exchange.tradesCalls)
	}

	if _, err := service.Report(context.Background(), pnl.PeriodToday, true); err != nil {
		t.Fatalf("forced report: %v", err)
	}
	if exchange.tradesCalls != 2 {
		t.Fatalf("force should bypass cache, got %d calls", exchange.tradesCalls)
	}
}

func TestReportInvalidate(t *testing.T) {
	exchange := &fakeExchange{trades: sampleTrades(), price: decimal.NewFromInt(600)}
	service := NewService(ServiceOptions{Exchange: exchange, CacheTTL: time.Hour})

	if _, err := service.Report(context.Background(), pnl.PeriodToday, false); err != nil {
		t.Fatal(err)
	}
	service.Invalidate()
	if _, err := service.Report(context.Background(), pnl.PeriodToday, false); err != nil {
		t.Fatal(err)
	}
	if exchange.tradesCalls != 2 {
		t.Fatalf("invalidate should drop cache, got %d calls", exchange.tradesCalls)
	}
}

func TestReportMonthToDateUsesFileLoader(t *testing.T) {
	exchange := &fakeExchange{price: decimal.NewFromInt(600)}
	var loadedPath string
	var loadedStart time.Time
	service := NewService(ServiceOptions{
		Exchange:         exchange,
		TradeHistoryPath: "/tmp/history.xlsx",
		LoadFile: func(path string, start time.Time) ([]pnl.Trade, error) {
			loadedPath = path
			loadedStart = start
			return sampleTrades(), nil
		},
		Now: func() time.Time { return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC) },
	})

	report, err := service.Report(context.Background(), pnl.PeriodMonthToDate, false)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if loadedPath != "/tmp/history.xlsx" {
		t.Fatalf("unexpected path: %q", loadedPath)
	}
	if loadedStart.Day() != 1 || loadedStart.Month() != time.March {
		t.Fatalf("loader should get start of month: %v", loadedStart)
	}
	if exchange.tradesCalls != 0 {
		t.Fatal("month-to-date must not hit the trades endpoint")
	}
	if len(report.Rows) != 1 {
		t.Fatalf("unexpected rows: %+v", report.Rows)
	}
}

func TestReportPriceFallback(t *testing.T) {
	exchange := &fakeExchange{trades: sampleTrades(), priceErr: errors.New("down")}
	service := NewService(ServiceOptions{Exchange: exchange})

	report, err := service.Report(context.Background(), pnl.PeriodToday, false)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !report.BNBPrice.Equal(fallbackBNBPrice) {
		t.Fatalf("expected fallback price, got %s", report.BNBPrice)
	}
}

func TestReportUpstreamError(t *testing.T) {
	exchange := &fakeExchange{tradesErr: errTest}
	service := NewService(ServiceOptions{Exchange: exchange})

	if _, err := service.Report(context.Background(), pnl.PeriodToday, false); err == nil {
		t.Fatal("expected upstream error")
	}
}

func TestNotifyFileChanged(t *testing.T) {
	exchange := &fakeExchange{trades: sampleTrades(), price: decimal.NewFromInt(600)}
	events := NewEventHub()
	service := NewService(ServiceOptions{Exchange: exchange, Events: events, CacheTTL: time.Hour})

	if _, err := service.Report(context.Background(), pnl.PeriodToday, false); err != nil {
		t.Fatal(err)
	}

	ch, cancel := events.Subscribe()
	defer cancel()

	service.NotifyFileChanged("/tmp/history.xlsx")

	select {
	case event := <-ch:
		if event.Type != EventFileChanged || event.Path != "/tmp/history.xlsx" {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("expected file-changed event")
	}

	if _, err := service.Report(context.Background(), pnl.PeriodToday, false); err != nil {
		t.Fatal(err)
	}
	if exchange.tradesCalls != 2 {
		t.Fatal("file change should invalidate the cache")
	}
}
