package gemini

import (
	"context"
	"encoding/base64"
	"slices"
)

// DefaultAspectRatio is used when the caller passes none.
const DefaultAspectRatio = "1:1"

// AspectRatios lists the ratios the image model accepts.
var AspectRatios = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

// Image is a generated picture.
type Image struct {
	Data     []byte
	MIMEType string
}

// GenerateImage renders one image for prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) (Image, error) {
	if aspectRatio == "" {
		aspectRatio = DefaultAspectRatio
	}
	if !slices.Contains(AspectRatios, aspectRatio) {
		return Image{}, &Error{Kind: KindTerminalClient, Op: opImage, Message: "unsupported aspect ratio " + aspectRatio}
	}

	req := PredictRequest{
		Instances:  []ImageInstance{{Prompt: prompt}},
		Parameters: ImageParameters{SampleCount: 1, AspectRatio: aspectRatio},
	}
	var resp PredictResponse
	if err := c.call(ctx, opImage, c.cfg.ImageModel+":predict", req, &resp); err != nil {
		return Image{}, err
	}

	if len(resp.Predictions) == 0 {
		return Image{}, &Error{Kind: KindContentBlocked, Op: opImage, Message: "no image returned; content filter triggered"}
	}
	p := resp.Predictions[0]
	if p.RAIFilteredReason != "" {
		return Image{}, &Error{Kind: KindContentBlocked, Op: opImage, Message: p.RAIFilteredReason}
	}
	if p.BytesBase64Encoded == "" {
		return Image{}, &Error{Kind: KindMalformedResponse, Op: opImage, Message: "prediction carries no image bytes"}
	}
	data, err := base64.StdEncoding.DecodeString(p.BytesBase64Encoded)
	if err != nil {
		return Image{}, &Error{Kind: KindMalformedResponse, Op: opImage, Message: "image bytes are not valid base64", Err: err}
	}

	mimeType := p.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return Image{Data: data, MIMEType: mimeType}, nil
}
