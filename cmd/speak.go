package cmd

import (
	"fmt"
	"os"
	"time"

	"creatorhub/internal/gemini"
	"creatorhub/pkg/wav"

	"github.com/spf13/cobra"
)

func newSpeakCommand(ctx *commandContext) *cobra.Command {
	var (
		voice string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Synthesize speech to a WAV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			ai, err := ctx.aiClient()
			if err != nil {
				return err
			}
			defer ai.Close()

			speech, err := ai.Synthesize(cmd.Context(), text, voice)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, speech.WAV, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			hdr, _, err := wav.Decode(speech.WAV)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeWAV(out, speech.Voice, hdr))
			return nil
		},
	}
	cmd.Flags().StringVar(&voice, "voice", gemini.DefaultVoice, "Prebuilt voice name")
	cmd.Flags().StringVarP(&out, "out", "o", "speech.wav", "Output file")
	return cmd
}

func describeWAV(path, voice string, h wav.Header) string {
	var length time.Duration
	if h.SampleRate > 0 {
		length = time.Duration(h.Samples()) * time.Second / time.Duration(h.SampleRate)
	}
	return fmt.Sprintf("Wrote %s: %s, %d Hz, %d-bit, %d ch, %s",
		path, voice, h.SampleRate, h.BitsPerSample, h.Channels, length.Round(time.Millisecond))
}
