package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration loaded from environment variables, an optional
// config file and command-line flags (highest precedence first: flags, env, file).
type Config struct {
	ListenAddr              string `mapstructure:"listen_addr"`
	GracefulShutdownTimeout int    `mapstructure:"graceful_shutdown_timeout"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	JWTSecret string `mapstructure:"jwt_secret"`
	JWTIssuer string `mapstructure:"jwt_iss"`

	LogLevel      string `mapstructure:"log_level"`
	LogPretty     bool   `mapstructure:"log_pretty"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`

	// ViewWriteLimit caps view writes per client and article within
	// ViewWriteWindow. Zero disables the throttle.
	ViewWriteLimit  int64         `mapstructure:"view_write_limit"`
	ViewWriteWindow time.Duration `mapstructure:"view_write_window"`

	// TrustedProxies lists the addresses or CIDR ranges of reverse proxies
	// whose X-Forwarded-For header is believed. Empty means the peer address
	// is the client.
	TrustedProxies []string `mapstructure:"trusted_proxies"`

	BeaconWorkers   int `mapstructure:"beacon_workers"`
	BeaconQueueSize int `mapstructure:"beacon_queue_size"`
}

var defaults = map[string]interface{}{
	"listen_addr":               ":8080",
	"graceful_shutdown_timeout": 15,
	"redis_addr":                "localhost:6379",
	"redis_password":            "",
	"redis_db":                  0,
	"jwt_secret":                "",
	"jwt_iss":                   "",
	"log_level":                 "info",
	"log_pretty":                false,
	"log_file":                  "",
	"log_max_size_mb":           100,
	"log_max_backups":           3,
	"log_max_age_days":          28,
	"view_write_limit":          0,
	"view_write_window":         time.Minute,
	"trusted_proxies":           []string{},
	"beacon_workers":            4,
	"beacon_queue_size":         1024,
}

// Load reads configuration. Environment variables use the upper-case key names
// (REDIS_ADDR, LISTEN_ADDR, ...). file may be empty; flags may be nil.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// bindFlags binds every flag whose name, with dashes as underscores, is a config key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key := flagKey(f.Name)
		if _, known := defaults[key]; !known || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("redis_addr is required"))
	}
	if c.GracefulShutdownTimeout <= 0 {
		errs = append(errs, errors.New("graceful_shutdown_timeout must be positive"))
	}
	if c.ViewWriteLimit < 0 {
		errs = append(errs, errors.New("view_write_limit must not be negative"))
	}
	if c.ViewWriteLimit > 0 && c.ViewWriteWindow <= 0 {
		errs = append(errs, errors.New("view_write_window must be positive when view_write_limit is set"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}
	if c.BeaconWorkers <= 0 {
		errs = append(errs, errors.New("beacon_workers must be positive"))
	}
	if c.BeaconQueueSize < 0 {
		errs = append(errs, errors.New("beacon_queue_size must not be negative"))
	}
	return errors.Join(errs...)
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address is a single-host range.
func (c Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// ShutdownTimeout is GracefulShutdownTimeout as a duration.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.GracefulShutdownTimeout) * time.Second
}
