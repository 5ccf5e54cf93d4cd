package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mlaakso/bourse/internal/config"
	"github.com/mlaakso/bourse/internal/domain"
	"github.com/mlaakso/bourse/internal/exchange"
	"github.com/mlaakso/bourse/internal/investor"
	"github.com/mlaakso/bourse/internal/ledger"
)

func main() {
	assetsFlag := flag.String("assets", "NOK,FUM,NDEA", "Comma-separated asset tickers to trade")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	assets := strings.Split(*assetsFlag, ",")
	for i := range assets {
		assets[i] = strings.TrimSpace(assets[i])
	}

	tick := domain.NewTick(cfg.TickDecimals)
	ex := exchange.New(tick, assets...)

	// Register investors and seed their accounts. Each trader gets its
	// own derived seed so runs are reproducible end to end.
	traders := make([]*investor.RandomTrader, 0, cfg.SimInvestors)
	for i := 0; i < cfg.SimInvestors; i++ {
		inv, err := investor.New(investorName(i), ex, ledger.DisposalMethod(cfg.DisposalMethod))
		if err != nil {
			logger.Error("failed to register investor", slog.String("error", err.Error()))
			os.Exit(1)
		}
		trader := investor.NewRandomTrader(inv, tick, cfg.SimSeed+int64(i))
		trader.Fund(cfg.SimInitialCash, assets, cfg.SimOpeningPrice, cfg.SimInitialQuantity)
		traders = append(traders, trader)
	}

	logger.Info("simulation starting",
		slog.Int("investors", cfg.SimInvestors),
		slog.Int("ticks", cfg.SimTicks),
		slog.String("assets", strings.Join(assets, ",")),
		slog.Int64("seed", cfg.SimSeed),
	)

	// Tick loop: all submissions for a tick are collected before any
	// asset is cleared, keeping trade sequencing deterministic.
	totalTrades := 0
	for tickNo := 1; tickNo <= cfg.SimTicks; tickNo++ {
		for _, trader := range traders {
			for _, asset := range assets {
				ref, ok := ex.LastPrice(asset)
				if !ok {
					ref = cfg.SimOpeningPrice
				}
				if _, err := trader.PlaceOne(asset, ref); err != nil {
					logger.Debug("placement skipped",
						slog.String("investor", trader.Investor().Name()),
						slog.String("asset", asset),
						slog.String("reason", err.Error()),
					)
				}
			}
		}

		for _, asset := range assets {
			trades, err := ex.Clear(asset)
			if err != nil {
				continue
			}
			totalTrades += len(trades)
			for _, t := range trades {
				logger.Debug("trade",
					slog.Int("tick", tickNo),
					slog.String("asset", t.Asset),
					slog.String("price", t.Price.String()),
					slog.Int64("quantity", t.Quantity),
					slog.Uint64("sequence", t.Sequence),
				)
			}
		}
	}

	pricer := func(asset string) (decimal.Decimal, bool) {
		return ex.LastPrice(asset)
	}

	logger.Info("simulation finished", slog.Int("trades", totalTrades))
	for _, asset := range assets {
		if last, ok := ex.LastPrice(asset); ok {
			logger.Info("closing price", slog.String("asset", asset), slog.String("price", last.String()))
		} else {
			logger.Info("closing price", slog.String("asset", asset), slog.String("price", "none"))
		}
	}
	for _, trader := range traders {
		acct := trader.Investor().Account()
		logger.Info("account summary",
			slog.String("investor", trader.Investor().Name()),
			slog.String("cash", acct.Cash().StringFixed(cfg.TickDecimals)),
			slog.String("total_value", acct.TotalValue(pricer).StringFixed(cfg.TickDecimals)),
			slog.Int("transactions", len(acct.History())),
		)
	}
}

func investorName(i int) string {
	names := []string{"Jack", "John", "James", "Jenna", "Mikko", "Aino", "Ville", "Sanna"}
	if i < len(names) {
		return names[i]
	}
	return names[i%len(names)] + "-" + strconv.Itoa(i/len(names))
}
