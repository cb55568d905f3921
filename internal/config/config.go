package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Pool store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// StoreConfig selects where pool records live.
type StoreConfig struct {
	Kind      string
	StateFile string
	PGDSN     string
}

// Validate checks that the selected backend has what it needs.
func (c StoreConfig) Validate() error {
	switch c.Kind {
	case StoreMemory:
		return nil
	case StoreFile:
		if c.StateFile == "" {
			return fmt.Errorf("state file is required for store %q", c.Kind)
		}
		return nil
	case StorePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("pg dsn is required for store %q", c.Kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown store %q", c.Kind)
	}
}

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	Store         StoreConfig
	In            string
	Genesis       string
	Results       string
	Events        string
	RPCURL        string
	Exchange      string
	ChainID       uint64
	ScaleDecimals uint8
	MaxRetries    int
	RetryBackoff  time.Duration
	LogLevel      string
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"store":          StoreMemory,
		"results":        "./data/results.jsonl",
		"events":         "./data/events.jsonl",
		"exchange":       DefaultExchange,
		"chain-id":       uint64(1),
		"scale-decimals": 18,
		"max-retries":    5,
		"retry-backoff":  500 * time.Millisecond,
		"log-level":      "info",
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	scale, err := scaleDecimals(v)
	if err != nil {
		return ReplayConfig{}, err
	}
	cfg := ReplayConfig{
		Store:         storeConfig(v),
		In:            v.GetString("in"),
		Genesis:       v.GetString("genesis"),
		Results:       v.GetString("results"),
		Events:        v.GetString("events"),
		RPCURL:        v.GetString("rpc"),
		Exchange:      v.GetString("exchange"),
		ChainID:       v.GetUint64("chain-id"),
		ScaleDecimals: scale,
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		LogLevel:      v.GetString("log-level"),
	}
	return cfg, nil
}

// QueryConfig holds configuration for the read-only query commands.
type QueryConfig struct {
	Store         StoreConfig
	ScaleDecimals uint8
	LogLevel      string
}

// LoadQuery merges config file, environment variables, and flags into QueryConfig.
func LoadQuery(cfgFile string, flags *pflag.FlagSet) (QueryConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"store":          StoreFile,
		"state-file":     "./data/pools.json",
		"scale-decimals": 18,
		"log-level":      "warn",
	})
	if err != nil {
		return QueryConfig{}, err
	}

	scale, err := scaleDecimals(v)
	if err != nil {
		return QueryConfig{}, err
	}
	return QueryConfig{
		Store:         storeConfig(v),
		ScaleDecimals: scale,
		LogLevel:      v.GetString("log-level"),
	}, nil
}

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	In       string
	Out      string
	Errors   string
	LogLevel string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":       "./data/typed_events.jsonl",
		"errors":    "./data/decode_errors.jsonl",
		"log-level": "info",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	return DecodeConfig{
		In:       v.GetString("in"),
		Out:      v.GetString("out"),
		Errors:   v.GetString("errors"),
		LogLevel: v.GetString("log-level"),
	}, nil
}

// DefaultExchange is the address logs are emitted under when none is set.
const DefaultExchange = "0x0000000000000000000000000000000000005a5a"

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SIMPLESWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("simpleswap")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func storeConfig(v *viper.Viper) StoreConfig {
	return StoreConfig{
		Kind:      strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		StateFile: v.GetString("state-file"),
		PGDSN:     v.GetString("pg-dsn"),
	}
}

func scaleDecimals(v *viper.Viper) (uint8, error) {
	d := v.GetInt("scale-decimals")
	if d < 0 || d > 77 {
		return 0, fmt.Errorf("scale-decimals %d out of range [0, 77]", d)
	}
	return uint8(d), nil
}
