package llm

import (
	"context"

	"clientflow/internal/stream"
)

// RequestContext carries the situational fields the user supplies with a
// draft request. The enumerated values are validated in pkg/validation.
type RequestContext struct {
	Urgency           string `json:"urgency"`
	MessageType       string `json:"messageType"`
	RelationshipStage string `json:"relationshipStage"`
	ProjectPhase      string `json:"projectPhase"`
	CustomNotes       string `json:"customNotes,omitempty"`
	ClientName        string `json:"clientName,omitempty"`
	UserName          string `json:"userName,omitempty"`
}

// DraftRequest is one model call: a single response variant for the given
// client message, written in the assigned tone.
type DraftRequest struct {
	OriginalMessage        string
	Context                RequestContext
	Tone                   string
	RefinementInstructions string
	PreviousResponses      []string
	StyleProfile           string
	Model                  string
}

// StreamChunk is one unit of streamed model output. Content chunks carry
// text; the final chunk carries Metadata instead. Err reports a mid-stream
// upstream failure: the channel is closed after an Err chunk.
type StreamChunk struct {
	Content  string
	Metadata *stream.VariantMetadata
	Err      error
}

// Provider is the language-model collaborator. StreamDraft returns after
// the upstream call is accepted; fragments arrive on the channel, which is
// closed when the variant finishes or fails.
type Provider interface {
	StreamDraft(ctx context.Context, req DraftRequest) (<-chan StreamChunk, error)
	DefaultModel() string
}
