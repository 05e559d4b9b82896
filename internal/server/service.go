package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sashboard/internal/logging"
	"sashboard/internal/pnl"
	"sashboard/internal/tradefile"
)

const bnbSymbol = "BNBUSDC"

// fallbackBNBPrice is used when the live price lookup fails, so a spreadsheet
// report still renders with approximate fee conversion.
var fallbackBNBPrice = decimal.NewFromInt(600)

// Exchange is the slice of the futures client the dashboard needs.
type Exchange interface {
	TradesSince(ctx context.Context, start time.Time) ([]pnl.Trade, error)
	TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// FileLoader reads trades from the exported spreadsheet.
type FileLoader func(path string, start time.Time) ([]pnl.Trade, error)

// ServiceOptions configures the report service.
type ServiceOptions struct {
	Exchange         Exchange
	LoadFile         FileLoader
	TradeHistoryPath string
	CacheTTL         time.Duration
	Logger           *logging.Logger
	Events           *EventHub
	Now              func() time.Time
}

// Service computes period reports, caching them briefly so a busy UI does not
// hammer the exchange.
type Service struct {
	exchange Exchange
	loadFile FileLoader
	filePath string
	cacheTTL time.Duration
	logger   *logging.Logger
	events   *EventHub
	now      func() time.Time

	mu    sync.Mutex
	cache map[pnl.Period]cachedReport
}

type cachedReport struct {
	report  pnl.Report
	expires time.Time
}

func NewService(opts ServiceOptions) *Service {
	if opts.LoadFile == nil {
		opts.LoadFile = tradefile.Load
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		exchange: opts.Exchange,
		loadFile: opts.LoadFile,
		filePath: opts.TradeHistoryPath,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger,
		events:   opts.Events,
		now:      opts.Now,
	}
}

// Report returns the analysis for a period, serving from cache unless force
// is set or the cached copy expired.
func (s *Service) Report(ctx context.Context, period pnl.Period, force bool) (pnl.Report, error) {
	if s == nil {
		return pnl.Report{}, errors.New("report service unavailable")
	}

	now := s.now()
	if !force {
		s.mu.Lock()
		cached, ok := s.cache[period]
		s.mu.Unlock()
		if ok && now.Before(cached.expires) {
			return cached.report, nil
		}
	}

	trades, err := s.loadTrades(ctx, period, now)
	if err != nil {
		return pnl.Report{}, err
	}

	report := pnl.Calculate(trades, s.bnbPrice(ctx))
	report.Period = string(period)

	s.mu.Lock()
	if s.cache == nil {
		s.cache = make(map[pnl.Period]cachedReport)
	}
	s.cache[period] = cachedReport{report: report, expires: now.Add(s.cacheTTL)}
	s.mu.Unlock()
	return report, nil
}

// Invalidate drops all cached reports.
func (s *Service) Invalidate() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
}

// NotifyFileChanged invalidates the cache and tells subscribers to refetch.
// Wired to the spreadsheet watcher.
func (s *Service) NotifyFileChanged(path string) {
	if s == nil {
		return
	}
	s.Invalidate()
	if s.logger != nil {
		s.logger.Info("trade history changed", map[string]string{"path": path})
	}
	s.events.Broadcast(Event{Type: EventFileChanged, Path: path})
}

func (s *Service) loadTrades(ctx context.Context, period pnl.Period, now time.Time) ([]pnl.Trade, error) {
	start := period.Start(now)
	switch period {
	case pnl.PeriodMonthToDate:
		return s.loadFile(s.filePath, start)
	default:
		if s.exchange == nil {
			return nil, errors.New("exchange client unavailable")
		}
		return s.exchange.TradesSince(ctx, start)
	}
}

func (s *Service) bnbPrice(ctx context.Context) decimal.Decimal {
	if s.exchange != nil {
		price, err := s.exchange.TickerPrice(ctx, bnbSymbol)
		if err == nil && price.IsPositive() {
			return price
		}
		if err != nil && s.logger != nil {
			s.logger.Warn("bnb price lookup failed, using fallback", map[string]string{
				"error": err.Error(),
			})
		}
	}
	return fallbackBNBPrice
}
