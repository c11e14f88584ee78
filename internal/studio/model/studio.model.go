package model

import projectmodel "creatorhub/internal/project/model"

// Preset is a prompt template for one project type.
type Preset struct {
	Type        string `yaml:"type" json:"type"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
	Prompt      string `yaml:"prompt" json:"-"`
}

type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Draft is a generated project and whether its text was cut short.
type Draft struct {
	Project   *projectmodel.Project `json:"project"`
	Truncated bool                  `json:"truncated"`
}

type TextRequest struct {
	Prompt string `json:"prompt"`
}

type TextResponse struct {
	Text         string `json:"text"`
	Truncated    bool   `json:"truncated"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// VisionRequest carries the image base64 encoded.
type VisionRequest struct {
	Prompt   string `json:"prompt"`
	Image    string `json:"image_base64"`
	MIMEType string `json:"mime_type"`
}

type ImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type ImageResponse struct {
	Image    string `json:"image_base64"`
	MIMEType string `json:"mime_type"`
}

type SpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type BooksRequest struct {
	Topic string `json:"topic"`
}

type DraftRequest struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}
