package llm

import (
	"context"
	"encoding/base64"
	"strings"
)

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive the model's text.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its text response.
	// A reply with no usable text is reported as *ErrEmptyResponse carrying
	// the raw provider payload.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// Messages is the conversation history. Question synthesis sends a
	// single user message made of a text part and zero or more images.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	// Zero leaves the provider default in place.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Zero leaves the provider default in place.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role  Role
	Parts []Part
}

// Part is one piece of a message: either text or an inline image.
type Part struct {
	Text  string
	Image *InlineImage
}

// InlineImage is image data sent alongside the prompt.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image data.
func (img InlineImage) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URL.
func (img InlineImage) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + img.Base64()
}

// TextPart builds a text part.
func TextPart(s string) Part { return Part{Text: s} }

// ImagePart builds an inline image part.
func ImagePart(mimeType string, data []byte) Part {
	return Part{Image: &InlineImage{MIMEType: mimeType, Data: data}}
}

// UserMessage builds a user message from parts.
func UserMessage(parts ...Part) Message {
	return Message{Role: RoleUser, Parts: parts}
}

// Text concatenates the text parts of the message.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Image == nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Images returns the image parts of the message.
func (m Message) Images() []InlineImage {
	var out []InlineImage
	for _, p := range m.Parts {
		if p.Image != nil {
			out = append(out, *p.Image)
		}
	}
	return out
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the LLM's output.
type Response struct {
	// Text is the generated text.
	Text string

	// Raw is the provider's response payload as JSON.
	Raw []byte

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
