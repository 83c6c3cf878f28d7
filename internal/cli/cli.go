// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audingest"
	"github.com/ik5/audingest/internal/config"
	"github.com/ik5/audingest/internal/logging"
	"github.com/ik5/audingest/resample"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLI is the audingest command line interface.
type CLI struct {
	rootCmd *cobra.Command
	version string
	fs      afero.Fs

	// newLogger is replaced in tests to keep stderr quiet.
	newLogger func(config.LogConfig) (*zap.Logger, error)

	cfg *config.Config
	log *zap.Logger
}

// New creates the CLI on the OS filesystem and standard streams.
func New(version string) *CLI {
	return newCLI(version, afero.NewOsFs(), os.Stdout, os.Stderr)
}

func newCLI(version string, fs afero.Fs, stdout, stderr io.Writer) *CLI {
	c := &CLI{
		version:   version,
		fs:        fs,
		newLogger: logging.New,
	}

	root := &cobra.Command{
		Use:           "audingest",
		Short:         "Convert audio files to mono 16 kHz samples",
		Long:          "audingest decodes WAV, AIFF, FLAC, MP3 and Ogg Vorbis files into a single mono float32 signal at a fixed sample rate.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "path to config file (default: XDG config dir)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("resampler", "", "resampler engine: spectral, polyphase, cubic")
	flags.Int("target-rate", 0, "output sample rate in Hz")
	flags.Int("block-size", 0, "resampler block size in frames")

	root.AddCommand(
		c.newDecodeCommand(),
		c.newProbeCommand(),
		c.newFormatsCommand(),
		c.newVersionCommand(),
	)

	c.rootCmd = root
	return c
}

// Execute runs the command line in args.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.ExecuteContext(ctx)
}

// setup loads the configuration, applies environment and flag overrides,
// and builds the logger.
func (c *CLI) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(c.fs, path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("resampler"); v != "" {
		cfg.Resampler = v
	}
	if cmd.Flags().Changed("target-rate") {
		cfg.TargetSampleRate, _ = cmd.Flags().GetInt("target-rate")
	}
	if cmd.Flags().Changed("block-size") {
		cfg.BlockSize, _ = cmd.Flags().GetInt("block-size")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := c.newLogger(cfg.Log)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = log
	c.log.Debug("configuration loaded",
		zap.Int("target_sample_rate", cfg.TargetSampleRate),
		zap.Int("block_size", cfg.BlockSize),
		zap.String("resampler", cfg.Resampler),
		zap.Int("workers", cfg.Workers),
	)
	return nil
}

func (c *CLI) pipeline() (*audingest.Pipeline, error) {
	engine, err := resample.ParseEngine(c.cfg.Resampler)
	if err != nil {
		return nil, err
	}

	p, err := audingest.NewPipeline(
		audingest.WithTargetRate(c.cfg.TargetSampleRate),
		audingest.WithBlockSize(c.cfg.BlockSize),
		audingest.WithResampler(engine),
		audingest.WithLogger(c.log),
		audingest.WithFs(c.fs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	return p, nil
}

func (c *CLI) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("audingest version %s\n", c.version)
		},
	}
}
