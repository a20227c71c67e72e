package config

import (
	"github.com/spf13/viper"
)

// envPrefix scopes all environment overrides.
const envPrefix = "POWERMERGE"

func init() {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
}

// applyEnvOverrides layers environment variables over the loaded config.
// Only operational knobs are overridable; the matching semantics stay in
// the file.
func applyEnvOverrides(cfg *Config) {
	if viper.IsSet("concurrency") {
		if v := viper.GetInt("concurrency"); v > 0 {
			cfg.Concurrency = v
		}
	}
	if viper.IsSet("min_source_count") {
		if v := viper.GetInt("min_source_count"); v > 0 {
			cfg.MinSourceCount = v
		}
	}
	if viper.IsSet("match_threshold") {
		if v := viper.GetFloat64("match_threshold"); v > 0 {
			cfg.Matching.Threshold = v
		}
	}
}
