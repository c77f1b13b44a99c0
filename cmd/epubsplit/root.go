package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simp-lee/epubsplit"
	"github.com/simp-lee/epubsplit/internal/config"
	"github.com/simp-lee/epubsplit/internal/console"
	"github.com/simp-lee/epubsplit/internal/logger"
)

// Set via -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usageLine = "Usage: epubsplit <path_to_epub>"

func newRootCmd(fs afero.Fs) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "epubsplit <path_to_epub>",
		Short: "Split an ePub book into one plain-text file per chapter",
		Long: `epubsplit reads an ePub, follows its spine in reading order and writes
every chapter as a plain-text file to <Documents>/Split_Books/<book>/.

Files are named NN_<chapter-file>.txt where NN is the spine position.
Chapters with less than 200 bytes of text (covers, copyright pages) are
skipped without renumbering the rest. The book's output folder is
replaced on every run.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), usageLine)
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Verbose)
			defer log.Sync()

			if cfg.File != "" {
				log.Debug("config file loaded", zap.String("file", cfg.File))
			}

			out := cmd.OutOrStdout()
			s := epubsplit.NewSplitter(epubsplit.Options{
				OutputRoot: cfg.OutputRoot,
				MinLength:  cfg.MinLength,
				Width:      cfg.Width,
				Fs:         fs,
				Logger:     log,
				Observer:   console.NewPrinter(out, out != os.Stdout),
			})

			_, err = s.Split(cmd.Context(), args[0])
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./.epubsplit.yaml or ~/.epubsplit.yaml)")
	flags.String("output-root", "", "directory receiving one folder per book (default: <Documents>/Split_Books)")
	flags.Int("min-length", epubsplit.DefaultMinContentLength, "minimum chapter text length in bytes")
	flags.Int("width", epubsplit.DefaultWrapWidth, "wrap width of the converted text")
	flags.Bool("verbose", false, "enable debug logging")

	return cmd
}
