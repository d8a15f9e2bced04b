package main

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ngc-linker/packages/compiler-cli/linker/environment"
	"ngc-linker/packages/compiler-cli/logging"
)

// config is the merged result of defaults, config file, environment and
// flags, in increasing order of precedence.
type config struct {
	environment.LinkerPartialOptions `mapstructure:",squash"`

	OutDir    string `mapstructure:"outDir"`
	Dialect   string `mapstructure:"dialect"`
	Jobs      int    `mapstructure:"jobs"`
	LogLevel  string `mapstructure:"logLevel"`
	LogFormat string `mapstructure:"logFormat"`
}

// envBindings maps config keys to environment variables.
var envBindings = map[string]string{
	"outDir":                            "NGC_LINKER_OUT_DIR",
	"dialect":                           "NGC_LINKER_DIALECT",
	"jobs":                              "NGC_LINKER_JOBS",
	"logLevel":                          "NGC_LINKER_LOG_LEVEL",
	"logFormat":                         "NGC_LINKER_LOG_FORMAT",
	"sourceMapping":                     "NGC_LINKER_SOURCE_MAPPING",
	"linkerJitMode":                     "NGC_LINKER_JIT_MODE",
	"unknownDeclarationVersionHandling": "NGC_LINKER_UNKNOWN_VERSION_HANDLING",
}

// flagBindings maps config keys to command line flags.
var flagBindings = map[string]string{
	"outDir":                            "out-dir",
	"dialect":                           "dialect",
	"jobs":                              "jobs",
	"logLevel":                          "log-level",
	"logFormat":                         "log-format",
	"sourceMapping":                     "source-mapping",
	"linkerJitMode":                     "jit",
	"unknownDeclarationVersionHandling": "unknown-version-handling",
}

func setDefaults(v *viper.Viper) {
	defaults := environment.DefaultLinkerOptions
	v.SetDefault("enableI18nLegacyMessageIdFormat", defaults.EnableI18nLegacyMessageIdFormat)
	v.SetDefault("i18nNormalizeLineEndingsInICUs", defaults.I18nNormalizeLineEndingsInICUs)
	v.SetDefault("i18nUseExternalIds", defaults.I18nUseExternalIds)
	v.SetDefault("sourceMapping", defaults.SourceMapping)
	v.SetDefault("linkerJitMode", defaults.LinkerJitMode)
	v.SetDefault("unknownDeclarationVersionHandling", string(defaults.UnknownDeclarationVersionHandling))
	v.SetDefault("dialect", "")
	v.SetDefault("jobs", runtime.GOMAXPROCS(0))
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "console")
}

// loadConfig reads the configuration. Without an explicit configFile, an
// optional ngc-linker.{yaml,toml,json} in the working directory is used.
func loadConfig(fs afero.Fs, flags *pflag.FlagSet, configFile string) (*config, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "binding %s", env)
		}
	}
	for key, name := range flagBindings {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.Wrapf(err, "binding --%s", name)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ngc-linker")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = runtime.GOMAXPROCS(0)
	}
	return &cfg, nil
}

// logger builds the logger described by the config.
func (c *config) logger() (logging.Logger, error) {
	level := logging.ParseLogLevel(c.LogLevel)
	switch c.LogFormat {
	case "", "console":
		return logging.NewConsoleLogger(level), nil
	case "json":
		return logging.NewJSONLogger(level)
	}
	return nil, errors.WithHint(errors.Newf("unknown log format %q", c.LogFormat), `use "console" or "json"`)
}
