// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ik5/audingest"
	"github.com/ik5/audingest/formats/wav"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type decodeResult struct {
	path    string
	samples int
	export  string
	err     error
}

func (c *CLI) newDecodeCommand() *cobra.Command {
	var (
		outDir   string
		bitDepth int
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "decode FILE...",
		Short: "Decode files to mono samples at the target rate",
		Long: "Decode each file to mono float32 samples at the target rate and print the sample count.\n" +
			"With --out-dir every result is also written as a mono PCM WAV file.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch bitDepth {
			case 16, 24, 32:
			default:
				return fmt.Errorf("%w: %d", wav.ErrUnsupportedBitDepth, bitDepth)
			}
			for _, path := range args {
				if err := validateInput(c.fs, path, force); err != nil {
					return err
				}
			}
			if outDir != "" {
				if err := c.fs.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			p, err := c.pipeline()
			if err != nil {
				return err
			}

			results := make([]decodeResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(c.cfg.Workers)
			for i, path := range args {
				g.Go(func() error {
					res := decodeResult{path: path}
					samples, err := p.DecodeFileContext(ctx, path)
					if err == nil && outDir != "" {
						res.export, err = c.export(outDir, path, p.TargetRate(), bitDepth, samples)
					}
					res.samples = len(samples)
					res.err = err
					results[i] = res
					// One bad file does not stop the others.
					return nil
				})
			}
			_ = g.Wait()

			var errs []error
			for _, res := range results {
				if res.err != nil {
					cmd.PrintErrf("%s: %v\n", res.path, res.err)
					errs = append(errs, fmt.Errorf("%s: %w", res.path, res.err))
					continue
				}
				cmd.Printf("%s: %d samples, %s at %d Hz\n",
					res.path, res.samples, audingest.Duration(res.samples, p.TargetRate()), p.TargetRate())
				if res.export != "" {
					cmd.Printf("  wrote %s\n", res.export)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "write <name>.<rate>.wav files to this directory")
	cmd.Flags().IntVar(&bitDepth, "bit-depth", 16, "bit depth of exported WAV files: 16, 24 or 32")
	cmd.Flags().Int("workers", 0, "number of files decoded concurrently (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "skip the file extension check")

	return cmd
}

func (c *CLI) export(dir, path string, rate, bitDepth int, samples []float32) (string, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(dir, name+"."+rateLabel(rate)+".wav")

	f, err := c.fs.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	if bitDepth == 16 {
		err = wav.WriteWAV16(f, rate, audingest.ToPCM16(samples))
	} else {
		err = wav.Encode(f, rate, bitDepth, samples)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return outPath, nil
}

// rateLabel renders 16000 as "16k" and 22050 as "22050".
func rateLabel(rate int) string {
	if rate%1000 == 0 {
		return strconv.Itoa(rate/1000) + "k"
	}
	return strconv.Itoa(rate)
}
