package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"creatorhub/internal/gemini"
	"creatorhub/internal/studio/service"

	"github.com/spf13/cobra"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var projectType string

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate text from a prompt, or from a preset with --type",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := inputText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if projectType != "" {
				presets, err := service.LoadCatalog()
				if err != nil {
					return err
				}
				if prompt, err = presets.Render(projectType, prompt); err != nil {
					return err
				}
			}

			ai, err := ctx.aiClient()
			if err != nil {
				return err
			}
			defer ai.Close()

			res, err := ai.GenerateText(cmd.Context(), prompt)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			if res.Truncated {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: output hit the token limit")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectType, "type", "t", "", "Project type preset; the prompt becomes the topic")

	return cmd
}

func newBooksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "books [topic]",
		Short: "Recommend further reading for a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			topic, err := inputText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			ai, err := ctx.aiClient()
			if err != nil {
				return err
			}
			defer ai.Close()

			books := service.NewStudioService(ai, nil, nil).RecommendBooks(cmd.Context(), topic)
			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recommendations.")
				return nil
			}
			rows := make([][]string, 0, len(books))
			for _, b := range books {
				rows = append(rows, []string{b.Title, b.Author})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Title", "Author"}, rows))
			return nil
		},
	}
}

func newImageCommand(ctx *commandContext) *cobra.Command {
	var (
		aspect string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "image [prompt]",
		Short: "Generate an image and write it to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := inputText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			ai, err := ctx.aiClient()
			if err != nil {
				return err
			}
			defer ai.Close()

			img, err := ai.GenerateImage(cmd.Context(), prompt, aspect)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, img.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d bytes)\n", out, img.MIMEType, len(img.Data))
			return nil
		},
	}
	cmd.Flags().StringVar(&aspect, "aspect", gemini.DefaultAspectRatio, "Aspect ratio: "+strings.Join(gemini.AspectRatios, ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "image.png", "Output file")
	return cmd
}

// inputText joins args, or reads stdin when there are none.
func inputText(stdin io.Reader, args []string) (string, error) {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no input: pass text as arguments or on stdin")
	}
	return text, nil
}
