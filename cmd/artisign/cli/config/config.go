package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/meigma/artisign/core"
	"github.com/meigma/artisign/internal/naming"
)

// Config represents the artisign CLI configuration.
// Use mapstructure tags for Viper unmarshaling.
type Config struct {
	Signing  SigningConfig  `mapstructure:"signing"`
	Checksum ChecksumConfig `mapstructure:"checksum"`
	Reuse    ReuseConfig    `mapstructure:"reuse"`
	Suffixes []core.Suffix  `mapstructure:"suffixes"`
}

// SigningConfig holds signing service settings.
type SigningConfig struct {
	URL       string `mapstructure:"url"`
	Skip      bool   `mapstructure:"skip"`
	UserAgent string `mapstructure:"user-agent"`
	Token     string `mapstructure:"token"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

// ChecksumConfig holds checksum settings.
type ChecksumConfig struct {
	Algorithm string `mapstructure:"algorithm"`
}

// ReuseConfig holds the previous-build directories used for reuse.
type ReuseConfig struct {
	SourceDir           string `mapstructure:"source-dir"`
	TargetDir           string `mapstructure:"target-dir"`
	FailOnInconsistency bool   `mapstructure:"fail-on-inconsistency"`
}

// SetDefaults registers every scalar key so environment variables are
// picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("signing.url", "")
	v.SetDefault("signing.skip", false)
	v.SetDefault("signing.user-agent", "")
	v.SetDefault("signing.token", "")
	v.SetDefault("signing.username", "")
	v.SetDefault("signing.password", "")
	v.SetDefault("checksum.algorithm", "sha256")
	v.SetDefault("reuse.source-dir", "")
	v.SetDefault("reuse.target-dir", "")
	v.SetDefault("reuse.fail-on-inconsistency", false)
	_ = v.BindEnv("suffixes")
}

// Defaults returns the content written by "config init".
// Credentials are omitted; they are usually set via environment variables.
func Defaults() map[string]any {
	return map[string]any{
		"signing": map[string]any{
			"url":  "",
			"skip": false,
		},
		"checksum": map[string]any{
			"algorithm": "sha256",
		},
		"reuse": map[string]any{
			"source-dir":            "",
			"target-dir":            "",
			"fail-on-inconsistency": false,
		},
		"suffixes": []map[string]any{
			{"extension": "jar"},
			{"classifier": "sources", "extension": "jar"},
			{"classifier": "javadoc", "extension": "jar"},
			{"extension": "pom"},
		},
	}
}

// Load decodes the effective configuration from v.
// Suffixes may be given as {classifier, extension} maps or in the
// "classifier:ext" notation, including a comma-separated environment value.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.DecodeHookFuncType(suffixHook))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

var (
	suffixType      = reflect.TypeOf(core.Suffix{})
	suffixSliceType = reflect.TypeOf([]core.Suffix{})
)

func suffixHook(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || from.Kind() != reflect.String {
		return data, nil
	}
	switch to {
	case suffixType:
		return naming.ParseSuffix(s)
	case suffixSliceType:
		var out []core.Suffix
		for part := range strings.SplitSeq(s, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			suffix, err := naming.ParseSuffix(part)
			if err != nil {
				return nil, err
			}
			out = append(out, suffix)
		}
		return out, nil
	default:
		return data, nil
	}
}
