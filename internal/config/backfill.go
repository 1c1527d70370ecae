package config

import "github.com/spf13/pflag"

// BackfillConfig holds configuration for historical recomputation.
type BackfillConfig struct {
	Common
	Storage
	From uint64
	To   uint64
	Step uint64
}

// LoadBackfill merges config file, environment variables, and flags into BackfillConfig.
func LoadBackfill(cfgFile string, flags *pflag.FlagSet) (BackfillConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"step":       uint64(1200),
		"out":        "./data/backfill.jsonl",
		"state-name": "stake-backfill",
	})
	if err != nil {
		return BackfillConfig{}, err
	}

	cfg := BackfillConfig{
		Common: readCommon(v),
		Storage: Storage{
			Out:       v.GetString("out"),
			PGDSN:     v.GetString("pg-dsn"),
			StateFile: v.GetString("state-file"),
			StateName: v.GetString("state-name"),
		},
		From: v.GetUint64("from"),
		To:   v.GetUint64("to"),
		Step: v.GetUint64("step"),
	}

	return cfg, nil
}
