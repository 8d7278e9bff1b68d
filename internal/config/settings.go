package config

import (
	"errors"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are presentation knobs that can change without a restart.
type Settings struct {
	CategoryOptions []string `mapstructure:"categoryOptions" json:"category_options"`
	TopN            TopN     `mapstructure:"topN" json:"top_n"`
}

type TopN struct {
	Min     int `mapstructure:"min" json:"min"`
	Max     int `mapstructure:"max" json:"max"`
	Default int `mapstructure:"default" json:"default"`
}

// Clamp bounds n to [Min, Max]; zero or negative means Default.
func (t TopN) Clamp(n int) int {
	if n <= 0 {
		n = t.Default
	}
	if n < t.Min {
		return t.Min
	}
	if n > t.Max {
		return t.Max
	}
	return n
}

func DefaultSettings() Settings {
	return Settings{
		CategoryOptions: []string{"Wearables", "Audio", "Gaming"},
		TopN:            TopN{Min: 3, Max: 20, Default: 5},
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

// NewStaticSettingsHolder returns a holder that never reloads.
func NewStaticSettingsHolder(s Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(s)
	return holder
}

func NewSettingsHolder(cfg Config, log *zap.Logger) (*SettingsHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.settings")

	v := viper.New()
	if path := strings.TrimSpace(cfg.Dashboard.SettingsPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dashboard")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/storepulse")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STOREPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("dashboard.categoryOptions", defaults.CategoryOptions)
	v.SetDefault("dashboard.topN.min", defaults.TopN.Min)
	v.SetDefault("dashboard.topN.max", defaults.TopN.Max)
	v.SetDefault("dashboard.topN.default", defaults.TopN.Default)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		fileLoaded = false
	}

	var settings Settings
	if err := v.UnmarshalKey("dashboard", &settings); err != nil {
		return nil, err
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	holder := NewStaticSettingsHolder(settings)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Warn("settings reload failed", zap.Error(err))
			return
		}
		if err := validateSettings(updated); err != nil {
			log.Warn("invalid settings ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("settings reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *SettingsHolder) Get() Settings {
	if h == nil {
		return DefaultSettings()
	}
	s, ok := h.current.Load().(Settings)
	if !ok {
		return DefaultSettings()
	}
	return s
}

func validateSettings(s Settings) error {
	if s.TopN.Min <= 0 {
		return errors.New("dashboard.topN.min must be positive")
	}
	if s.TopN.Max < s.TopN.Min {
		return errors.New("dashboard.topN.max must not be below min")
	}
	if s.TopN.Default < s.TopN.Min || s.TopN.Default > s.TopN.Max {
		return errors.New("dashboard.topN.default must be within [min, max]")
	}
	return nil
}
