package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	os.Unsetenv("PROTOEXTRACT_IN")
	os.Unsetenv("PROTOEXTRACT_RULES")
	os.Unsetenv("PROTOEXTRACT_MAXFILESIZE")
	os.Unsetenv("PROTOEXTRACT_MINGLYPHHEIGHT")
	os.Unsetenv("PROTOEXTRACT_REVIEWTHRESHOLD")
	os.Unsetenv("PROTOEXTRACT_OUT")
	os.Unsetenv("PROTOEXTRACT_LOGLEVEL")
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()
	setArgs([]string{"protoextract", "--in=" + tempDir})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 100*1024*1024)
	}
	if cfg.MinGlyphHeight != DefaultMinGlyphHeight {
		t.Errorf("LoadFromFlags() MinGlyphHeight = %v, want %v", cfg.MinGlyphHeight, DefaultMinGlyphHeight)
	}
	if cfg.ReviewThreshold != DefaultReviewThreshold {
		t.Errorf("LoadFromFlags() ReviewThreshold = %v, want %v", cfg.ReviewThreshold, DefaultReviewThreshold)
	}
	if cfg.OutputPath != "" {
		t.Errorf("LoadFromFlags() OutputPath = %v, want empty (stdout)", cfg.OutputPath)
	}
	if cfg.InputPath == "" {
		t.Error("LoadFromFlags() InputPath should not be empty")
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name                string
		extraArgs           []string
		wantLogLevel        string
		wantMaxFileSize     int64
		wantReviewThreshold int
		wantOutputPath      string
	}{
		{
			name:                "input only",
			wantLogLevel:        "info",
			wantMaxFileSize:     100 * 1024 * 1024,
			wantReviewThreshold: DefaultReviewThreshold,
		},
		{
			name:                "custom output file",
			extraArgs:           []string{"--out=protocols.json"},
			wantLogLevel:        "info",
			wantMaxFileSize:     100 * 1024 * 1024,
			wantReviewThreshold: DefaultReviewThreshold,
			wantOutputPath:      "protocols.json",
		},
		{
			name:                "debug logging",
			extraArgs:           []string{"--loglevel=debug"},
			wantLogLevel:        "debug",
			wantMaxFileSize:     100 * 1024 * 1024,
			wantReviewThreshold: DefaultReviewThreshold,
		},
		{
			name:                "custom max file size and threshold",
			extraArgs:           []string{"--maxfilesize=50000000", "--reviewthreshold=70"},
			wantLogLevel:        "info",
			wantMaxFileSize:     50000000,
			wantReviewThreshold: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalArgs := os.Args
			defer func() {
				os.Args = originalArgs
				resetFlags()
				clearEnvVars()
			}()

			tempDir := t.TempDir()
			args := append([]string{"protoextract", "--in=" + tempDir}, tt.extraArgs...)

			setArgs(args)
			resetFlags()
			clearEnvVars()

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
			if cfg.MaxFileSize != tt.wantMaxFileSize {
				t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, tt.wantMaxFileSize)
			}
			if cfg.ReviewThreshold != tt.wantReviewThreshold {
				t.Errorf("LoadFromFlags() ReviewThreshold = %v, want %v", cfg.ReviewThreshold, tt.wantReviewThreshold)
			}
			if cfg.OutputPath != tt.wantOutputPath {
				t.Errorf("LoadFromFlags() OutputPath = %v, want %v", cfg.OutputPath, tt.wantOutputPath)
			}
			if cfg.InputPath == "" {
				t.Error("LoadFromFlags() InputPath should not be empty")
			}
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()

	os.Setenv("PROTOEXTRACT_IN", tempDir)
	os.Setenv("PROTOEXTRACT_LOGLEVEL", "warn")
	os.Setenv("PROTOEXTRACT_MAXFILESIZE", "200000000")

	setArgs([]string{"protoextract"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.MaxFileSize != 200000000 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 200000000)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()

	os.Setenv("PROTOEXTRACT_LOGLEVEL", "warn")

	setArgs([]string{"protoextract", "--in=" + tempDir, "--loglevel=debug"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v (should override env)", cfg.LogLevel, "debug")
	}
}

func TestLoadFromFlags_InvalidLogLevel(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()
	setArgs([]string{"protoextract", "--in=" + tempDir, "--loglevel=invalid"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid log level")
	}
	if err != nil && !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid log level", err)
	}
}

func TestLoadFromFlags_MissingInput(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"protoextract", "--in=/cale/care/nu/exista"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for missing input path")
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"protoextract", "--version"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected version error")
	}
	if err != nil && err.Error() != "version requested" {
		t.Errorf("LoadFromFlags() error = %v, want 'version requested'", err)
	}
}
