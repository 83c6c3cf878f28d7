// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ik5/audingest"
	"github.com/ik5/audingest/audio"
	"github.com/spf13/cobra"
)

func (c *CLI) newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe FILE...",
		Short: "Show the container and tracks of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.pipeline()
			if err != nil {
				return err
			}

			var errs []error
			for _, path := range args {
				info, err := p.Probe(path)
				if err != nil {
					cmd.PrintErrf("%s: %v\n", path, err)
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}

				cmd.Printf("%s: %s\n", path, info.Format)
				selected, selErr := info.AudioTrack()
				for _, t := range info.Tracks {
					mark := " "
					if selErr == nil && t.ID == selected.ID {
						mark = "*"
					}
					cmd.Printf(" %s track %d: %s\n", mark, t.ID, describeTrack(t.Params))
				}
				if selErr != nil {
					cmd.Printf("  no decodable track: %v\n", selErr)
				}
			}
			return errors.Join(errs...)
		},
	}
}

func describeTrack(p audio.TrackParams) string {
	codec := string(p.Codec)
	if p.Codec == audio.CodecNull {
		codec = "none"
	}

	parts := []string{"codec=" + codec}
	if p.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("rate=%d", p.SampleRate))
	}
	if p.Channels > 0 {
		parts = append(parts, fmt.Sprintf("channels=%d", p.Channels))
	}
	if p.SampleFormat.Width > 0 {
		parts = append(parts, fmt.Sprintf("sample=%s%d/%d", p.SampleFormat.Encoding, p.SampleFormat.Bits, p.SampleFormat.Width*8))
	}
	if p.Frames > 0 && p.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("frames=%d", p.Frames))
		parts = append(parts, "duration="+audingest.Duration(int(p.Frames), p.SampleRate).String())
	}
	return strings.Join(parts, " ")
}

func (c *CLI) newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported containers and codecs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.pipeline()
			if err != nil {
				return err
			}
			reg := p.Registry()

			cmd.Println("Formats:")
			for _, f := range reg.Formats() {
				cmd.Printf("  %-5s %s (%s)\n", f.Name(), strings.Join(f.Extensions(), ", "), strings.Join(f.MIMETypes(), ", "))
			}

			var names []string
			for _, id := range reg.Codecs() {
				names = append(names, string(id))
			}
			cmd.Printf("Codecs: %s\n", strings.Join(names, ", "))
			return nil
		},
	}
}
