package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pion/stun/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dkeye/voicerooms/internal/domain"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	StaticPath   string        `mapstructure:"static_path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	Secret       string        `mapstructure:"secret"`
	AdminToken   string        `mapstructure:"admin_token"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
	SlowConsumer string        `mapstructure:"slow_consumer"`
	DefaultName  string        `mapstructure:"default_name"`
	DefaultIcons []string      `mapstructure:"default_icons"`
	ICEServers   []ICEServer   `mapstructure:"ice_servers"`
	OTelEndpoint string        `mapstructure:"otel_endpoint"`
	ServiceName  string        `mapstructure:"service_name"`
}

// RegisterFlags declares the command line overrides understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a yaml config file (default config/config.$CONFIG_ENV.yaml)")
	fs.Int("port", 8080, "http listen port")
	fs.String("mode", "release", "gin mode: release or debug")
	fs.String("static", "./web", "directory with the web client")
	fs.String("log-level", "info", "log level")
}

var flagKeys = map[string]string{
	"port":      "port",
	"mode":      "mode",
	"static":    "static_path",
	"log-level": "log_level",
}

// Load resolves the configuration. Precedence: flag > env (VOICE_*) > file > default.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	explicit := false
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			fileName = f.Value.String()
			explicit = true
		}
	}
	v.SetConfigFile(fileName)

	setDefaults(v)

	v.SetEnvPrefix("VOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if explicit || !isNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Msg("config resolved")
	return &cfg, nil
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "")
	v.SetDefault("admin_token", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("rate_limit", 200)
	v.SetDefault("rate_interval", "10s")
	v.SetDefault("slow_consumer", "disconnect")
	v.SetDefault("default_name", domain.DefaultName)
	v.SetDefault("default_icons", domain.DefaultIcons)
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("service_name", "voicerooms")
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.ReadLimit <= 0 {
		errs = append(errs, errors.New("read_limit must be positive"))
	}
	if c.PingPeriod <= 0 || c.PongWait <= 0 || c.WriteWait <= 0 {
		errs = append(errs, errors.New("ping_period, pong_wait and write_wait must be positive"))
	}
	if c.PingPeriod >= c.PongWait {
		errs = append(errs, errors.New("ping_period must be shorter than pong_wait"))
	}
	if c.SendBuffer <= 0 {
		errs = append(errs, errors.New("send_buffer must be positive"))
	}
	if c.RateLimit <= 0 || c.RateInterval <= 0 {
		errs = append(errs, errors.New("rate_limit and rate_interval must be positive"))
	}
	switch c.SlowConsumer {
	case "disconnect", "drop":
	default:
		errs = append(errs, fmt.Errorf("slow_consumer must be disconnect or drop, got %q", c.SlowConsumer))
	}
	for _, s := range c.ICEServers {
		if len(s.URLs) == 0 {
			errs = append(errs, errors.New("ice server without urls"))
		}
		for _, u := range s.URLs {
			if _, err := stun.ParseURI(u); err != nil {
				errs = append(errs, fmt.Errorf("ice server url %q: %w", u, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Profile returns the join defaults derived from the config.
func (c *Config) Profile() domain.Profile {
	return domain.Profile{Name: c.DefaultName, Icons: c.DefaultIcons}
}
