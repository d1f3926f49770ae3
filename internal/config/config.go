// Package config layers defaults, a config file, environment
// variables, and CLI flags into one Config, the way the teacher's own
// config package does with viper/pflag.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved runtime configuration for voicekit.
type Config struct {
	Paths    PathsConfig   `mapstructure:"paths"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
	Server   ServerConfig  `mapstructure:"server"`
	LogLevel string        `mapstructure:"log_level"`
}

// PathsConfig locates voice model archives on disk.
type PathsConfig struct {
	ModelsDir string `mapstructure:"models_dir"`
}

// RuntimeConfig controls the Inference Core (§4.2) and acceleration
// resolution (§4.6).
type RuntimeConfig struct {
	AccelerationMode string `mapstructure:"acceleration_mode"`
	CPUNumThreads    int    `mapstructure:"cpu_num_threads"`
	LoadAllModels    bool   `mapstructure:"load_all_models"`
	ORTLibraryPath   string `mapstructure:"ort_library_path"`
	ORTAPIVersion    uint32 `mapstructure:"ort_api_version"`
}

// ServerConfig controls the HTTP facade (internal/httpapi).
type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	Workers         int    `mapstructure:"workers"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_secs"`
	RequestTimeout  int    `mapstructure:"request_timeout_secs"`
}

// LoadOptions configures Load.
type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// DefaultConfig returns voicekit's out-of-the-box defaults.
func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			ModelsDir: "models",
		},
		Runtime: RuntimeConfig{
			AccelerationMode: "auto",
			CPUNumThreads:    0,
			LoadAllModels:    true,
			ORTLibraryPath:   "",
			ORTAPIVersion:    0,
		},
		Server: ServerConfig{
			ListenAddr:      ":50021",
			Workers:         2,
			ShutdownTimeout: 30,
			RequestTimeout:  60,
		},
		LogLevel: "info",
	}
}

// RegisterFlags binds fs's flags to Config's fields, with defaults as
// their default values.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-models-dir", defaults.Paths.ModelsDir, "Directory of .vvm voice model archives")
	fs.String("acceleration-mode", defaults.Runtime.AccelerationMode, "GPU acceleration mode (auto|cpu|gpu)")
	fs.Int("cpu-num-threads", defaults.Runtime.CPUNumThreads, "Inference intra-op thread count (0 = library default)")
	fs.Bool("load-all-models", defaults.Runtime.LoadAllModels, "Load every model found under paths-models-dir at startup")
	fs.String("runtime-ort-library-path", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library (alias for --runtime-ort-library-path)")
	fs.Uint("ort-api-version", uint(defaults.Runtime.ORTAPIVersion), "Expected ONNX Runtime C API version (0 = auto)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int("workers", defaults.Server.Workers, "Max concurrent synthesis requests")
	fs.Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown drain timeout in seconds")
	fs.Int("request-timeout", defaults.Server.RequestTimeout, "Per-request synthesis timeout in seconds")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

// Load resolves Config from defaults, an optional config file,
// environment variables prefixed VOICEKIT_, and opts.Cmd's flags, in
// ascending priority.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("VOICEKIT")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "VOICEKIT_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("voicekit")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.models_dir", c.Paths.ModelsDir)
	v.SetDefault("runtime.acceleration_mode", c.Runtime.AccelerationMode)
	v.SetDefault("runtime.cpu_num_threads", c.Runtime.CPUNumThreads)
	v.SetDefault("runtime.load_all_models", c.Runtime.LoadAllModels)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_api_version", c.Runtime.ORTAPIVersion)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.shutdown_timeout_secs", c.Server.ShutdownTimeout)
	v.SetDefault("server.request_timeout_secs", c.Server.RequestTimeout)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.models_dir", "paths-models-dir")
	v.RegisterAlias("runtime.acceleration_mode", "acceleration-mode")
	v.RegisterAlias("runtime.cpu_num_threads", "cpu-num-threads")
	v.RegisterAlias("runtime.load_all_models", "load-all-models")
	v.RegisterAlias("runtime.ort_library_path", "runtime-ort-library-path")
	v.RegisterAlias("runtime.ort_library_path", "ort-lib")
	v.RegisterAlias("runtime.ort_api_version", "ort-api-version")
	v.RegisterAlias("server.listen_addr", "server-listen-addr")
	v.RegisterAlias("server.workers", "workers")
	v.RegisterAlias("server.shutdown_timeout_secs", "shutdown-timeout")
	v.RegisterAlias("server.request_timeout_secs", "request-timeout")
	v.RegisterAlias("log_level", "log-level")
}
