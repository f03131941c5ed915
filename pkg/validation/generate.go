package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"clientflow/internal/service/llm"
)

const (
	minMessageRunes = 10
	maxMessageRunes = 2000
)

var (
	urgencyValues           = []string{"immediate", "standard", "non_urgent"}
	messageTypeValues       = []string{"update", "question", "concern", "deliverable", "payment", "scope_change"}
	relationshipStageValues = []string{"new", "established", "difficult", "long_term"}
	projectPhaseValues      = []string{"discovery", "active", "completion", "maintenance", "on_hold"}
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every invalid field so the client can fix
// them all in one round trip.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	fields := make([]string, len(v))
	for i, fe := range v {
		fields[i] = fe.Field
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

// ValidateGenerateRequest checks the message body and context enums of a
// generation request. Returns nil when the request is valid.
func ValidateGenerateRequest(originalMessage string, reqContext llm.RequestContext) ValidationErrors {
	var errs ValidationErrors

	runes := utf8.RuneCountInString(strings.TrimSpace(originalMessage))
	switch {
	case runes == 0:
		errs = append(errs, FieldError{Field: "originalMessage", Message: "is required"})
	case runes < minMessageRunes:
		errs = append(errs, FieldError{Field: "originalMessage", Message: fmt.Sprintf("must be at least %d characters", minMessageRunes)})
	case runes > maxMessageRunes:
		errs = append(errs, FieldError{Field: "originalMessage", Message: fmt.Sprintf("must be at most %d characters", maxMessageRunes)})
	}

	errs = appendEnumError(errs, "context.urgency", reqContext.Urgency, urgencyValues)
	errs = appendEnumError(errs, "context.messageType", reqContext.MessageType, messageTypeValues)
	errs = appendEnumError(errs, "context.relationshipStage", reqContext.RelationshipStage, relationshipStageValues)
	errs = appendEnumError(errs, "context.projectPhase", reqContext.ProjectPhase, projectPhaseValues)

	return errs
}

func appendEnumError(errs ValidationErrors, field, value string, allowed []string) ValidationErrors {
	if value == "" {
		return append(errs, FieldError{Field: field, Message: "is required"})
	}
	for _, v := range allowed {
		if value == v {
			return errs
		}
	}
	return append(errs, FieldError{
		Field:   field,
		Message: "must be one of: " + strings.Join(allowed, ", "),
	})
}
