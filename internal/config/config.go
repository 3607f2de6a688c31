package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultMinGlyphHeight  = 4.0
	DefaultReviewThreshold = 55
)

// Config holds all configuration for the protocol extractor
type Config struct {
	// Input configuration
	InputPath   string // PDF file or directory of PDFs
	RulesPath   string // optional custom rule-set JSON
	MaxFileSize int64  // Maximum PDF file size in bytes

	// Extraction configuration
	MinGlyphHeight  float64
	ReviewThreshold int

	// Output configuration
	OutputPath string // empty means stdout

	// Application configuration
	Version  string
	LogLevel string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		InputPath:       ".",
		MaxFileSize:     DefaultMaxFileSize,
		MinGlyphHeight:  DefaultMinGlyphHeight,
		ReviewThreshold: DefaultReviewThreshold,
		Version:         "1.0.0",
		LogLevel:        DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.InputPath != "" {
		if expandedPath, err := filepath.Abs(cfg.InputPath); err == nil {
			cfg.InputPath = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PROTOEXTRACT")
	viper.AutomaticEnv()

	viper.SetDefault("in", cfg.InputPath)
	viper.SetDefault("rules", cfg.RulesPath)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("minglyphheight", cfg.MinGlyphHeight)
	viper.SetDefault("reviewthreshold", cfg.ReviewThreshold)
	viper.SetDefault("out", cfg.OutputPath)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("in", cfg.InputPath, "PDF file or directory of PDF files to extract")
	pflag.String("rules", cfg.RulesPath, "Path to a custom rule-set JSON (merged over defaults)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Float64("minglyphheight", cfg.MinGlyphHeight, "Minimum glyph height kept during layout extraction")
	pflag.Int("reviewthreshold", cfg.ReviewThreshold, "Confidence below which records are flagged for review")
	pflag.String("out", cfg.OutputPath, "Output JSON file (default: stdout)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("in", pflag.Lookup("in"))
	_ = viper.BindPFlag("rules", pflag.Lookup("rules"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("minglyphheight", pflag.Lookup("minglyphheight"))
	_ = viper.BindPFlag("reviewthreshold", pflag.Lookup("reviewthreshold"))
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nprotoextract - structured extraction of therapeutic protocols from PDF documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --in=lista_protocoale.pdf                # extract one document to stdout\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --in=/path/to/pdfs --out=protocols.json  # extract a directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --in=doc.pdf --rules=rules.json          # with a custom rule set\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PROTOEXTRACT_IN              Input file or directory\n")
		fmt.Fprintf(os.Stderr, "  PROTOEXTRACT_RULES           Custom rule-set JSON\n")
		fmt.Fprintf(os.Stderr, "  PROTOEXTRACT_MAXFILESIZE     Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  PROTOEXTRACT_MINGLYPHHEIGHT  Minimum glyph height\n")
		fmt.Fprintf(os.Stderr, "  PROTOEXTRACT_REVIEWTHRESHOLD Review confidence threshold\n")
		fmt.Fprintf(os.Stderr, "  PROTOEXTRACT_OUT             Output file\n")
		fmt.Fprintf(os.Stderr, "  PROTOEXTRACT_LOGLEVEL        Log level\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.InputPath = viper.GetString("in")
	cfg.RulesPath = viper.GetString("rules")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MinGlyphHeight = viper.GetFloat64("minglyphheight")
	cfg.ReviewThreshold = viper.GetInt("reviewthreshold")
	cfg.OutputPath = viper.GetString("out")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path cannot be empty")
	}
	if _, err := os.Stat(c.InputPath); err != nil {
		return fmt.Errorf("cannot access input path %s: %w", c.InputPath, err)
	}

	if c.RulesPath != "" {
		if _, err := os.Stat(c.RulesPath); err != nil {
			return fmt.Errorf("cannot access rule set %s: %w", c.RulesPath, err)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.MinGlyphHeight < 0 {
		return errors.New("minimum glyph height cannot be negative")
	}
	if c.ReviewThreshold < 0 || c.ReviewThreshold > 100 {
		return errors.New("review threshold must be between 0 and 100")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{InputPath: %s, OutputPath: %s, RulesPath: %s, LogLevel: %s, MaxFileSize: %d, ReviewThreshold: %d}",
		c.InputPath, c.OutputPath, c.RulesPath, c.LogLevel, c.MaxFileSize, c.ReviewThreshold)
}
