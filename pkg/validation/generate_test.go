package validation

import (
	"strings"
	"testing"

	"clientflow/internal/service/llm"
)

func validContext() llm.RequestContext {
	return llm.RequestContext{
		Urgency:           "standard",
		MessageType:       "update",
		RelationshipStage: "established",
		ProjectPhase:      "active",
	}
}

func fieldSet(errs ValidationErrors) map[string]bool {
	set := make(map[string]bool, len(errs))
	for _, fe := range errs {
		set[fe.Field] = true
	}
	return set
}

func TestValidateGenerateRequest(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		mutate     func(*llm.RequestContext)
		wantFields []string
	}{
		{
			name:    "valid request",
			message: "The project milestone slipped by a week.",
		},
		{
			name:       "empty message",
			message:    "   ",
			wantFields: []string{"originalMessage"},
		},
		{
			name:       "message too short",
			message:    "too short",
			wantFields: []string{"originalMessage"},
		},
		{
			name:       "message too long",
			message:    strings.Repeat("a", 2001),
			wantFields: []string{"originalMessage"},
		},
		{
			name:    "unknown urgency",
			message: "The project milestone slipped by a week.",
			mutate: func(c *llm.RequestContext) {
				c.Urgency = "asap"
			},
			wantFields: []string{"context.urgency"},
		},
		{
			name:    "missing enums collected together",
			message: "The project milestone slipped by a week.",
			mutate: func(c *llm.RequestContext) {
				c.MessageType = ""
				c.ProjectPhase = "shipping"
			},
			wantFields: []string{"context.messageType", "context.projectPhase"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqContext := validContext()
			if tt.mutate != nil {
				tt.mutate(&reqContext)
			}

			errs := ValidateGenerateRequest(tt.message, reqContext)
			if len(tt.wantFields) == 0 {
				if errs != nil {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}

			got := fieldSet(errs)
			if len(got) != len(tt.wantFields) {
				t.Fatalf("got errors %v, want fields %v", errs, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if !got[f] {
					t.Errorf("missing error for field %q in %v", f, errs)
				}
			}
		})
	}
}

func TestMessageAtBoundariesIsValid(t *testing.T) {
	for _, n := range []int{10, 2000} {
		if errs := ValidateGenerateRequest(strings.Repeat("x", n), validContext()); errs != nil {
			t.Errorf("%d-rune message rejected: %v", n, errs)
		}
	}
}
