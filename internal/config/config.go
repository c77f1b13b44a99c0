package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/simp-lee/epubsplit"
)

// ErrNoDocumentsDir is returned when no Documents directory can be derived
// from the environment.
var ErrNoDocumentsDir = errors.New("config: cannot determine the Documents directory")

// Configuration keys. Each is also read from EPUBSPLIT_<KEY> and from the
// flag named in flagNames.
const (
	KeyOutputRoot = "output_root"
	KeyMinLength  = "min_length"
	KeyWidth      = "width"
	KeyVerbose    = "verbose"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "EPUBSPLIT"

var flagNames = map[string]string{
	KeyOutputRoot: "output-root",
	KeyMinLength:  "min-length",
	KeyWidth:      "width",
	KeyVerbose:    "verbose",
}

// Config holds the resolved settings of one run.
type Config struct {
	// OutputRoot receives one folder per book. Defaults to
	// <Documents>/Split_Books.
	OutputRoot string `mapstructure:"output_root"`

	// MinLength is the minimum chapter text length in bytes.
	MinLength int `mapstructure:"min_length"`

	// Width is the wrap width of the converted text.
	Width int `mapstructure:"width"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// Load resolves the configuration. Precedence, highest first: flags that
// were set on the command line, EPUBSPLIT_* environment variables, the
// config file, built-in defaults.
//
// cfgFile names an explicit YAML file; when empty, .epubsplit.yaml is looked
// up in the working directory and then the home directory, and its absence
// is not an error. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyOutputRoot, "")
	v.SetDefault(KeyMinLength, epubsplit.DefaultMinContentLength)
	v.SetDefault(KeyWidth, epubsplit.DefaultWrapWidth)
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".epubsplit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	// Zero selects the library default in epubsplit.Options, so it is
	// refused here rather than silently reinterpreted.
	if cfg.MinLength < 1 {
		return nil, fmt.Errorf("config: %s must be at least 1, got %d", KeyMinLength, cfg.MinLength)
	}
	if cfg.Width < 1 {
		return nil, fmt.Errorf("config: %s must be at least 1, got %d", KeyWidth, cfg.Width)
	}

	if cfg.OutputRoot == "" {
		docs, err := DocumentsDir()
		if err != nil {
			return nil, err
		}
		cfg.OutputRoot = filepath.Join(docs, epubsplit.OutputFolder)
	} else {
		cfg.OutputRoot = expandHome(cfg.OutputRoot)
	}

	return &cfg, nil
}

// DocumentsDir returns the user's Documents directory: $XDG_DOCUMENTS_DIR,
// then the XDG_DOCUMENTS_DIR entry of $XDG_CONFIG_HOME/user-dirs.dirs, then
// $HOME/Documents.
func DocumentsDir() (string, error) {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", ErrNoDocumentsDir
	}

	if dir := userDirsDocuments(home); dir != "" {
		return dir, nil
	}
	return filepath.Join(home, "Documents"), nil
}

// userDirsDocuments reads the xdg-user-dirs file, which uses shell variable
// syntax, and returns its absolute Documents entry or "".
func userDirsDocuments(home string) string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(configHome, "user-dirs.dirs"))
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return ""
	}

	dir := v.GetString("XDG_DOCUMENTS_DIR")
	dir = strings.Replace(dir, "$HOME", home, 1)
	if !filepath.IsAbs(dir) {
		return ""
	}
	// xdg-user-dirs points a disabled directory at $HOME itself.
	if filepath.Clean(dir) == filepath.Clean(home) {
		return ""
	}
	return dir
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
