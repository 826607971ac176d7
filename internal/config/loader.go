package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line
// arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help.
var ErrHelpRequested = errors.New("help requested")

// EnvTLSVersion names the environment variable consulted for the
// minimum TLS version when no flag or config value is given.
const EnvTLSVersion = "GURL_TLS_VERSION"

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file
// to produce a Config. Flags override file values; the positional URL
// argument overrides both.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	cmd.InitDefaultHelpFlag()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := &Config{
		Method:          "GET",
		MaxRedirects:    10,
		ConnectTimeout:  10 * time.Second,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Second,
		MaxResponseSize: 10 << 20,
		MaxHeaderBytes:  64 << 10,
		ConfigFile:      configPath,
		Tracing:         TracingConfig{SampleRate: 1.0},
	}

	if configPath != "" {
		cfgViper := viper.New()
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := cfgViper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	positional := flagSet.Args()
	if len(positional) > 1 {
		return nil, fmt.Errorf("unexpected argument %q: only one URL is accepted", positional[1])
	}
	if len(positional) == 1 {
		cfg.TargetURL = positional[0]
	}

	normalize(cfg, flagSet)
	return cfg, nil
}

// normalize applies derived settings after file and flag merging:
// @file body indirection, the implicit POST for -d, HEAD for -I, and
// the TLS version environment fallback.
func normalize(cfg *Config, fs *pflag.FlagSet) {
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)

	if strings.HasPrefix(cfg.Body, "@") {
		cfg.BodyFile = cfg.Body[1:]
		cfg.Body = ""
	}

	// A body without an explicit method turns the request into a POST.
	if (cfg.Body != "" || cfg.BodyFile != "") && cfg.Method == "GET" && !fs.Changed("request") {
		cfg.Method = "POST"
	}

	if cfg.HeadOnly {
		cfg.Method = "HEAD"
	}

	if cfg.TLSMinVersion == "" {
		if env := os.Getenv(EnvTLSVersion); env != "" {
			cfg.TLSMinVersion = env
		}
	}
}
