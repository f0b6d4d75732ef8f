package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"GhostRegime/pkg/logger"
	"GhostRegime/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"required"`
	Log         logger.Config `yaml:"log"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"2s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	GhostRegime GhostRegime `yaml:"ghostregime"`
	Vendors     Vendors     `yaml:"vendors"`
	History     struct {
		Backend  string `yaml:"backend" default:"clickhouse" validate:"oneof=clickhouse memory"`
		SeedFile string `yaml:"seed_file"`
	} `yaml:"history"`
	ClickHouse ClickHouse `yaml:"clickhouse"`
	Redis      Redis      `yaml:"redis"`
	Kafka      Kafka      `yaml:"kafka"`
}

type GhostRegime struct {
	CoreSymbols         []string         `yaml:"core_symbols"`
	Symbols             []SymbolChain    `yaml:"symbols" validate:"dive"`
	LookbackDays        int              `yaml:"lookback_days" default:"420" validate:"gte=250"`
	FetchTimeout        time.Duration    `yaml:"fetch_timeout" default:"15s"`
	MaxConcurrency      int              `yaml:"max_concurrency" default:"4" validate:"gte=1,lte=32"`
	FreshnessMaxAgeDays int              `yaml:"freshness_max_age_days" default:"4" validate:"gte=1"`
	Conviction          ConvictionPolicy `yaml:"conviction"`
	TargetWeights       SleeveWeights    `yaml:"target_weights"`
	Schedule            Schedule         `yaml:"schedule"`
	BuildLockTTL        time.Duration    `yaml:"build_lock_ttl" default:"5m"`
}

// SleeveWeights are the house-model target weights per sleeve.
type SleeveWeights struct {
	Stocks float64 `yaml:"stocks"`
	Gold   float64 `yaml:"gold"`
	BTC    float64 `yaml:"btc"`
}

// Default daily run time, UTC.
const (
	DefaultRunHour   = 22
	DefaultRunMinute = 30
)

type Schedule struct {
	Enabled bool   `yaml:"enabled"`
	Time    string `yaml:"time" default:"22:30"` // UTC HH:MM
	CatchUp bool   `yaml:"catch_up"`
}

type ConvictionPolicy struct {
	AgreementWeight float64 `yaml:"agreement_weight" default:"1" validate:"gte=0"`
	CoverageWeight  float64 `yaml:"coverage_weight" default:"1" validate:"gte=0"`
}

// SymbolChain lists vendor entries ("vendor:id") in fallback order.
type SymbolChain struct {
	Symbol string   `yaml:"symbol" validate:"required"`
	Chain  []string `yaml:"chain" validate:"min=1"`
}

// ChainEntry is one parsed "vendor:id" element.
type ChainEntry struct {
	Vendor string
	ID     string
}

// ParseChainEntry splits on the first colon so ids may contain colons.
func ParseChainEntry(s string) (ChainEntry, error) {
	vendor, id, ok := strings.Cut(s, ":")
	if !ok || vendor == "" || id == "" {
		return ChainEntry{}, fmt.Errorf("chain entry %q must be vendor:id", s)
	}
	return ChainEntry{Vendor: strings.ToLower(vendor), ID: id}, nil
}

type Vendors struct {
	Stooq     Vendor `yaml:"stooq"`
	Tiingo    Vendor `yaml:"tiingo"`
	FRED      Vendor `yaml:"fred"`
	CoinGecko Vendor `yaml:"coingecko"`
}

type Vendor struct {
	Disabled bool          `yaml:"disabled"`
	BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey   string        `yaml:"api_key"`
	RPS      float64       `yaml:"rps" default:"2" validate:"gt=0"`
	Burst    int           `yaml:"burst" default:"2" validate:"gte=1"`
	Timeout  time.Duration `yaml:"timeout" default:"20s"`
	Breaker  Breaker       `yaml:"breaker"`
}

type Breaker struct {
	MaxRequests         uint32        `yaml:"max_requests" default:"1"`
	Interval            time.Duration `yaml:"interval" default:"1m"`
	Timeout             time.Duration `yaml:"timeout" default:"30s"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures" default:"3" validate:"gte=1"`
}

type ClickHouse struct {
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"default"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
}

type Redis struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr" default:"localhost:6379"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Prefix       string        `yaml:"prefix" default:"ghostregime"`
	SeriesTTL    time.Duration `yaml:"series_ttl" default:"6h"`
	PoolSize     int           `yaml:"pool_size" default:"10" validate:"gte=1"`
	MinIdleConns int           `yaml:"min_idle_conns" default:"2" validate:"gte=0"`
	PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
	// MemoryMaxSize bounds the in-process cache used when redis is disabled.
	MemoryMaxSize int `yaml:"memory_max_size" default:"1000" validate:"gte=1"`
}

type Kafka struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"ghostregime.snapshots"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	Compression  string        `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
	MaxAttempts  int           `yaml:"max_attempts" default:"5"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

// DefaultCoreSymbols must resolve for a fresh snapshot.
var DefaultCoreSymbols = []string{"SPY", "VIX", "TIP", "IEF", "DBC"}

// DefaultSymbols is the stock vendor fallback table.
func DefaultSymbols() []SymbolChain {
	etf := func(sym string) SymbolChain {
		lower := strings.ToLower(sym)
		return SymbolChain{Symbol: sym, Chain: []string{"stooq:" + lower + ".us", "tiingo:" + lower}}
	}
	return []SymbolChain{
		etf("SPY"),
		{Symbol: "VIX", Chain: []string{"fred:VIXCLS", "stooq:^vix"}},
		etf("TIP"),
		etf("IEF"),
		etf("DBC"),
		etf("HYG"),
		etf("LQD"),
		etf("GLD"),
		etf("UUP"),
		etf("USO"),
		{Symbol: "TNX", Chain: []string{"fred:DGS10", "stooq:10usy.b"}},
		{Symbol: "BTC", Chain: []string{"coingecko:bitcoin", "stooq:btcusd"}},
	}
}

var vendorBaseURLs = map[string]string{
	"stooq":     "https://stooq.com",
	"tiingo":    "https://api.tiingo.com",
	"fred":      "https://api.stlouisfed.org",
	"coingecko": "https://api.coingecko.com",
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	if err := c.applyDefaults(); err != nil {
		panic(err)
	}
	return c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TIINGO_API_KEY"); v != "" {
		c.Vendors.Tiingo.APIKey = v
	}
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Vendors.FRED.APIKey = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.Vendors.CoinGecko.APIKey = v
	}
	if v := os.Getenv("HISTORY_BACKEND"); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.GhostRegime.CoreSymbols) == 0 {
		c.GhostRegime.CoreSymbols = append([]string(nil), DefaultCoreSymbols...)
	}
	if len(c.GhostRegime.Symbols) == 0 {
		c.GhostRegime.Symbols = DefaultSymbols()
	}
	if c.GhostRegime.TargetWeights == (SleeveWeights{}) {
		c.GhostRegime.TargetWeights = SleeveWeights{Stocks: 0.60, Gold: 0.25, BTC: 0.15}
	}
	for name, v := range c.Vendors.byName() {
		if v.BaseURL == "" {
			v.BaseURL = vendorBaseURLs[name]
		}
	}
	return nil
}

func (v *Vendors) byName() map[string]*Vendor {
	return map[string]*Vendor{
		"stooq":     &v.Stooq,
		"tiingo":    &v.Tiingo,
		"fred":      &v.FRED,
		"coingecko": &v.CoinGecko,
	}
}

// Lookup returns the settings of a named vendor.
func (v *Vendors) Lookup(name string) (*Vendor, bool) {
	cfg, ok := v.byName()[strings.ToLower(name)]
	return cfg, ok
}

// Chain returns the parsed fallback chain of symbol.
func (g *GhostRegime) Chain(symbol string) ([]ChainEntry, bool) {
	for _, s := range g.Symbols {
		if s.Symbol != symbol {
			continue
		}
		out := make([]ChainEntry, 0, len(s.Chain))
		for _, raw := range s.Chain {
			e, err := ParseChainEntry(raw)
			if err != nil {
				continue
			}
			out = append(out, e)
		}
		return out, true
	}
	return nil, false
}

// SymbolNames lists configured symbols in declaration order.
func (g *GhostRegime) SymbolNames() []string {
	out := make([]string, 0, len(g.Symbols))
	for _, s := range g.Symbols {
		out = append(out, s.Symbol)
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	var errs []error
	known := make(map[string]bool, len(c.GhostRegime.Symbols))
	for _, s := range c.GhostRegime.Symbols {
		if known[s.Symbol] {
			errs = append(errs, fmt.Errorf("ghostregime.symbols: duplicate symbol %s", s.Symbol))
		}
		known[s.Symbol] = true
		for _, raw := range s.Chain {
			e, err := ParseChainEntry(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("ghostregime.symbols[%s]: %w", s.Symbol, err))
				continue
			}
			if _, ok := c.Vendors.Lookup(e.Vendor); !ok {
				errs = append(errs, fmt.Errorf("ghostregime.symbols[%s]: unknown vendor %q", s.Symbol, e.Vendor))
			}
		}
	}
	for _, core := range c.GhostRegime.CoreSymbols {
		if !known[core] {
			errs = append(errs, fmt.Errorf("ghostregime.core_symbols: %s has no vendor chain", core))
		}
	}
	if _, _, err := util.ParseClock(c.GhostRegime.Schedule.Time); err != nil {
		errs = append(errs, fmt.Errorf("ghostregime.schedule.time: %w", err))
	}
	w := c.GhostRegime.TargetWeights
	if w.Stocks < 0 || w.Gold < 0 || w.BTC < 0 {
		errs = append(errs, fmt.Errorf("ghostregime.target_weights must be non-negative"))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled"))
	}
	return errors.Join(errs...)
}
