package config

import "github.com/spf13/pflag"

// ComputeConfig holds configuration for the one-shot compute command.
type ComputeConfig struct {
	Common
	Block   uint64
	Display bool
	Places  int32
	// Snapshot also prints the raw snapshot set.
	Snapshot bool
}

// LoadCompute merges config file, environment variables, and flags into ComputeConfig.
func LoadCompute(cfgFile string, flags *pflag.FlagSet) (ComputeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"places": 4,
	})
	if err != nil {
		return ComputeConfig{}, err
	}

	cfg := ComputeConfig{
		Common:   readCommon(v),
		Block:    v.GetUint64("block"),
		Display:  v.GetBool("display"),
		Places:   v.GetInt32("places"),
		Snapshot: v.GetBool("snapshot"),
	}

	return cfg, nil
}
