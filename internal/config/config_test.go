package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/epubsplit"
)

// isolate points HOME and the XDG variables at a fresh temp dir and moves
// into an empty working directory so no real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DOCUMENTS_DIR", "")
	for _, key := range []string{KeyOutputRoot, KeyMinLength, KeyWidth, KeyVerbose} {
		name := EnvPrefix + "_" + strings.ToUpper(key)
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Chdir(t.TempDir())
	return home
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("output-root", "", "")
	fs.Int("min-length", epubsplit.DefaultMinContentLength, "")
	fs.Int("width", epubsplit.DefaultWrapWidth, "")
	fs.Bool("verbose", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Documents", epubsplit.OutputFolder), cfg.OutputRoot)
	assert.Equal(t, epubsplit.DefaultMinContentLength, cfg.MinLength)
	assert.Equal(t, epubsplit.DefaultWrapWidth, cfg.Width)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.File)
}

func TestLoad_UnsetFlagsKeepDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", testFlags(t))
	require.NoError(t, err)
	assert.Equal(t, epubsplit.DefaultMinContentLength, cfg.MinLength)
	assert.Equal(t, epubsplit.DefaultWrapWidth, cfg.Width)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	file := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, file, "min_length: 300\nwidth: 80\noutput_root: /from/file\n")

	t.Run("file over default", func(t *testing.T) {
		cfg, err := Load(file, testFlags(t))
		require.NoError(t, err)
		assert.Equal(t, 300, cfg.MinLength)
		assert.Equal(t, 80, cfg.Width)
		assert.Equal(t, "/from/file", cfg.OutputRoot)
		assert.Equal(t, file, cfg.File)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("EPUBSPLIT_MIN_LENGTH", "400")
		cfg, err := Load(file, testFlags(t))
		require.NoError(t, err)
		assert.Equal(t, 400, cfg.MinLength)
		assert.Equal(t, 80, cfg.Width)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("EPUBSPLIT_MIN_LENGTH", "400")
		cfg, err := Load(file, testFlags(t, "--min-length=500", "--verbose"))
		require.NoError(t, err)
		assert.Equal(t, 500, cfg.MinLength)
		assert.True(t, cfg.Verbose)
	})
}

func TestLoad_DiscoversDotFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".epubsplit.yaml"), "width: 72\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 72, cfg.Width)
	assert.Equal(t, filepath.Join(home, ".epubsplit.yaml"), cfg.File)

	// The working directory wins over the home directory.
	wd, err := os.Getwd()
	require.NoError(t, err)
	writeFile(t, filepath.Join(wd, ".epubsplit.yaml"), "width: 60\n")

	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Width)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "width: [unclosed\n")
	_, err := Load(bad, nil)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.yaml")
	writeFile(t, negative, "min_length: -1\n")
	_, err = Load(negative, nil)
	assert.ErrorContains(t, err, "min_length")

	zeroWidth := filepath.Join(dir, "zero.yaml")
	writeFile(t, zeroWidth, "width: 0\n")
	_, err = Load(zeroWidth, nil)
	assert.ErrorContains(t, err, "width")

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_RejectsZeroFromFlagsAndEnv(t *testing.T) {
	isolate(t)

	_, err := Load("", testFlags(t, "--min-length=0"))
	assert.ErrorContains(t, err, "min_length must be at least 1")

	t.Setenv("EPUBSPLIT_WIDTH", "0")
	_, err = Load("", testFlags(t))
	assert.ErrorContains(t, err, "width must be at least 1")
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := isolate(t)
	t.Setenv("EPUBSPLIT_OUTPUT_ROOT", "~/books/out")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books", "out"), cfg.OutputRoot)
}

func TestDocumentsDir(t *testing.T) {
	t.Run("environment variable", func(t *testing.T) {
		isolate(t)
		t.Setenv("XDG_DOCUMENTS_DIR", "/data/docs")

		dir, err := DocumentsDir()
		require.NoError(t, err)
		assert.Equal(t, "/data/docs", dir)
	})

	t.Run("user-dirs file", func(t *testing.T) {
		home := isolate(t)
		writeFile(t, filepath.Join(home, ".config", "user-dirs.dirs"),
			"# written by xdg-user-dirs-update\nXDG_DESKTOP_DIR=\"$HOME/Desktop\"\nXDG_DOCUMENTS_DIR=\"$HOME/Dokumente\"\n")

		dir, err := DocumentsDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "Dokumente"), dir)
	})

	t.Run("user-dirs disabled entry", func(t *testing.T) {
		home := isolate(t)
		writeFile(t, filepath.Join(home, ".config", "user-dirs.dirs"), "XDG_DOCUMENTS_DIR=\"$HOME/\"\n")

		dir, err := DocumentsDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "Documents"), dir)
	})

	t.Run("home fallback", func(t *testing.T) {
		home := isolate(t)

		dir, err := DocumentsDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "Documents"), dir)
	})

	t.Run("no home", func(t *testing.T) {
		isolate(t)
		t.Setenv("HOME", "")

		_, err := DocumentsDir()
		assert.ErrorIs(t, err, ErrNoDocumentsDir)
	})
}
