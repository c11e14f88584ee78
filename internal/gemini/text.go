package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// TruncationNotice is appended to text cut short by the output token limit.
const TruncationNotice = "\n\n[WARNING: The generated content was too long and has been cut short.]"

const (
	opText   = "text"
	opVision = "vision"
	opImage  = "image"
	opSpeech = "speech"
)

// TextResult is the outcome of a text-producing call.
type TextResult struct {
	Text         string
	Truncated    bool
	FinishReason string
}

// GenerateText sends prompt to the text model.
func (c *Client) GenerateText(ctx context.Context, prompt string) (TextResult, error) {
	res, _, err := c.generateText(ctx, opText, c.textRequest(prompt))
	return res, err
}

// GenerateJSON asks for JSON matching schema and decodes it into out.
// Output that does not parse is a malformed response, not an HTTP error.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema, out any) (TextResult, error) {
	if schema == nil {
		return TextResult{}, &Error{Kind: KindTerminalClient, Op: opText, Message: "response schema is required"}
	}
	req := c.textRequest(prompt)
	req.GenerationConfig.ResponseMimeType = "application/json"
	req.GenerationConfig.ResponseSchema = schema

	res, raw, err := c.generateText(ctx, opText, req)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return res, &Error{Kind: KindMalformedResponse, Op: opText, Message: "structured output is not valid JSON", Err: err}
	}
	return res, nil
}

func (c *Client) textRequest(prompt string) GenerateContentRequest {
	return GenerateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		GenerationConfig: GenerationConfig{
			Temperature:     0.7,
			TopK:            1,
			TopP:            1,
			MaxOutputTokens: 8192,
		},
	}
}

// generateText returns the annotated result and the raw model text.
func (c *Client) generateText(ctx context.Context, op string, req GenerateContentRequest) (TextResult, string, error) {
	var resp GenerateContentResponse
	if err := c.call(ctx, op, c.cfg.TextModel+":generateContent", req, &resp); err != nil {
		return TextResult{}, "", err
	}
	return decodeText(op, &resp)
}

// decodeText checks the response shape and applies the truncation policy.
func decodeText(op string, resp *GenerateContentResponse) (TextResult, string, error) {
	cand, err := firstCandidate(op, resp)
	if err != nil {
		return TextResult{}, "", err
	}

	var sb strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	raw := sb.String()
	reason := cand.FinishReason

	if raw == "" {
		switch {
		case blockedFinishReasons[reason]:
			return TextResult{}, "", &Error{Kind: KindContentBlocked, Op: op,
				Message: fmt.Sprintf("content generation stopped by moderation: %s", reason)}
		case reason == FinishMaxTokens:
			return TextResult{}, "", &Error{Kind: KindTruncated, Op: op,
				Message: "output token limit reached before any text was produced"}
		case reason != "":
			return TextResult{}, "", &Error{Kind: KindMalformedResponse, Op: op,
				Message: fmt.Sprintf("content generation stopped unexpectedly: %s", reason)}
		}
		return TextResult{}, "", &Error{Kind: KindMalformedResponse, Op: op, Message: "candidate carries no text"}
	}

	res := TextResult{Text: raw, FinishReason: reason}
	if reason == FinishMaxTokens {
		res.Text += TruncationNotice
		res.Truncated = true
	}
	return res, raw, nil
}

func firstCandidate(op string, resp *GenerateContentResponse) (Candidate, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return Candidate{}, &Error{Kind: KindContentBlocked, Op: op,
				Message: fmt.Sprintf("content generation blocked: %s", resp.PromptFeedback.BlockReason)}
		}
		return Candidate{}, &Error{Kind: KindMalformedResponse, Op: op, Message: "API returned no candidates"}
	}
	return resp.Candidates[0], nil
}
