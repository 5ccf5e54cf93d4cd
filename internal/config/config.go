package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds all runtime configuration for the exchange simulation.
type Config struct {
	LogLevel       string
	TickDecimals   int32
	DisposalMethod string

	SimSeed            int64
	SimTicks           int
	SimInvestors       int
	SimOpeningPrice    decimal.Decimal
	SimInitialCash     decimal.Decimal
	SimInitialQuantity int64
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	tickDecimals, err := getInt("TICK_DECIMALS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_DECIMALS: %w", err)
	}
	if tickDecimals < 0 || tickDecimals > 8 {
		return nil, fmt.Errorf("invalid TICK_DECIMALS: %d, must be between 0 and 8", tickDecimals)
	}

	disposal := getStr("DISPOSAL_METHOD", "fifo")
	if disposal != "fifo" && disposal != "lifo" {
		return nil, fmt.Errorf("invalid DISPOSAL_METHOD: %q, must be fifo or lifo", disposal)
	}

	seed, err := getInt64("SIM_SEED", 42)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_SEED: %w", err)
	}

	ticks, err := getInt("SIM_TICKS", 50)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_TICKS: %w", err)
	}
	if ticks <= 0 {
		return nil, fmt.Errorf("invalid SIM_TICKS: %d, must be positive", ticks)
	}

	investors, err := getInt("SIM_INVESTORS", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_INVESTORS: %w", err)
	}
	if investors <= 0 {
		return nil, fmt.Errorf("invalid SIM_INVESTORS: %d, must be positive", investors)
	}

	openingPrice, err := getDecimal("SIM_OPENING_PRICE", "5.00")
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_OPENING_PRICE: %w", err)
	}
	if !openingPrice.IsPositive() {
		return nil, fmt.Errorf("invalid SIM_OPENING_PRICE: %s, must be positive", openingPrice)
	}

	initialCash, err := getDecimal("SIM_INITIAL_CASH", "100000")
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_INITIAL_CASH: %w", err)
	}

	initialQuantity, err := getInt64("SIM_INITIAL_QUANTITY", 10000)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_INITIAL_QUANTITY: %w", err)
	}
	if initialQuantity < 0 {
		return nil, fmt.Errorf("invalid SIM_INITIAL_QUANTITY: %d, must not be negative", initialQuantity)
	}

	return &Config{
		LogLevel:           logLevel,
		TickDecimals:       int32(tickDecimals),
		DisposalMethod:     disposal,
		SimSeed:            seed,
		SimTicks:           ticks,
		SimInvestors:       investors,
		SimOpeningPrice:    openingPrice,
		SimInitialCash:     initialCash,
		SimInitialQuantity: initialQuantity,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getDecimal(key, defaultVal string) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		v = defaultVal
	}
	return decimal.NewFromString(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
