package gemini

import (
	"context"
	"encoding/base64"
	"strings"
)

// AnalyzeImage asks the text model about an image.
func (c *Client) AnalyzeImage(ctx context.Context, prompt string, image []byte, mimeType string) (TextResult, error) {
	if len(image) == 0 {
		return TextResult{}, &Error{Kind: KindTerminalClient, Op: opVision, Message: "image data is empty"}
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return TextResult{}, &Error{Kind: KindTerminalClient, Op: opVision, Message: "mime type must be image/*, got " + mimeType}
	}

	req := GenerateContentRequest{
		Contents: []Content{{
			Role: "user",
			Parts: []Part{
				{Text: prompt},
				{InlineData: &InlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			},
		}},
		GenerationConfig: GenerationConfig{
			Temperature:     0.4,
			TopK:            32,
			TopP:            1,
			MaxOutputTokens: 4096,
		},
	}
	res, _, err := c.generateText(ctx, opVision, req)
	return res, err
}
