package stream

// EventType identifies the kind of a streamed generation event.
type EventType string

const (
	EventStart    EventType = "start"
	EventContent  EventType = "content"
	EventComplete EventType = "complete"
	EventDone     EventType = "done"
	EventError    EventType = "error"
)

// VariantMetadata describes a finished response variant.
type VariantMetadata struct {
	Tone       string  `json:"tone"`
	Length     string  `json:"length"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Event is one element of the generation event stream. Exactly one payload
// group is populated depending on Type. Start, content and complete events
// carry VariantIndex; done carries HistoryID; error carries Message.
type Event struct {
	Type         EventType        `json:"type"`
	VariantIndex *int             `json:"variantIndex,omitempty"`
	Text         string           `json:"text,omitempty"`
	Metadata     *VariantMetadata `json:"metadata,omitempty"`
	HistoryID    string           `json:"historyId,omitempty"`
	Message      string           `json:"message,omitempty"`
}

// StartEvent marks the beginning of a variant's output.
func StartEvent(index int) Event {
	return Event{Type: EventStart, VariantIndex: &index}
}

// ContentEvent carries one text fragment for a variant.
func ContentEvent(index int, text string) Event {
	return Event{Type: EventContent, VariantIndex: &index, Text: text}
}

// CompleteEvent carries the final metadata for a variant.
func CompleteEvent(index int, metadata VariantMetadata) Event {
	return Event{Type: EventComplete, VariantIndex: &index, Metadata: &metadata}
}

// DoneEvent is the terminal success event, sent after persistence.
func DoneEvent(historyID string) Event {
	return Event{Type: EventDone, HistoryID: historyID}
}

// ErrorEvent is the terminal failure event.
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}

// IsTerminal reports whether the event ends the stream.
func (e Event) IsTerminal() bool {
	return e.Type == EventDone || e.Type == EventError
}
