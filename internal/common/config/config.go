// internal/common/config/config.go
package config

// Config is the root configuration tree, populated by viper from
// config.yaml plus environment overrides.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Selections SelectionsConfig `mapstructure:"selections"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Compiler   CompilerConfig   `mapstructure:"compiler"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// CatalogConfig locates the option/task catalogs. ProjectDir holds local
// project catalog files (*.json); ProjectURL optionally adds a remote one.
// The built-in catalog is always loaded unless DisableBuiltin is set.
type CatalogConfig struct {
	ProjectDir     string `mapstructure:"project_dir"`
	ProjectURL     string `mapstructure:"project_url"`
	DisableBuiltin bool   `mapstructure:"disable_builtin"`
	FetchTimeout   int    `mapstructure:"fetch_timeout"` // milliseconds
}

// SelectionsConfig chooses where per-instance selection documents come
// from: "file" (one-shot CLI) or "redis" (serve mode).
type SelectionsConfig struct {
	Source    string `mapstructure:"source"`
	File      string `mapstructure:"file"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CompilerConfig controls the engine-facing output contract.
// OutputMode "auto" emits a merged object for built-in tasks and an
// ordered fragment array for standard tasks; "array" and "merged" force
// one mode for every task.
type CompilerConfig struct {
	OutputMode string `mapstructure:"output_mode"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
