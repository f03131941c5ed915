package llm

import (
	"fmt"
	"strings"
)

var toneGuidance = map[string]string{
	"professional": "Write in a polished, businesslike voice. Be courteous and precise.",
	"friendly":     "Write in a warm, personable voice. Stay approachable without losing clarity.",
	"direct":       "Write in a concise, straightforward voice. Lead with the point.",
}

// buildSystemPrompt assembles the role instruction for one variant call.
func buildSystemPrompt(req DraftRequest) string {
	var b strings.Builder
	b.WriteString("You are an assistant that drafts replies a freelancer sends to their clients. ")
	b.WriteString("Respond with the reply text only, no preamble or commentary.\n\n")

	if guidance, ok := toneGuidance[req.Tone]; ok {
		b.WriteString(guidance)
		b.WriteString("\n")
	}

	if req.StyleProfile != "" {
		b.WriteString("\nMatch the freelancer's personal communication style:\n")
		b.WriteString(req.StyleProfile)
		b.WriteString("\n")
	}
	return b.String()
}

// buildUserPrompt assembles the client message plus situational context.
func buildUserPrompt(req DraftRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Client message:\n%s\n\n", req.OriginalMessage)
	fmt.Fprintf(&b, "Situation: this is a %s message, urgency %s. ", req.Context.MessageType, req.Context.Urgency)
	fmt.Fprintf(&b, "The client relationship is %s and the project is in the %s phase.\n", req.Context.RelationshipStage, req.Context.ProjectPhase)

	if req.Context.ClientName != "" {
		fmt.Fprintf(&b, "The client's name is %s.\n", req.Context.ClientName)
	}
	if req.Context.UserName != "" {
		fmt.Fprintf(&b, "Sign as %s.\n", req.Context.UserName)
	}
	if req.Context.CustomNotes != "" {
		fmt.Fprintf(&b, "Additional notes: %s\n", req.Context.CustomNotes)
	}

	if req.RefinementInstructions != "" {
		b.WriteString("\nThis is a refinement pass. Previous drafts:\n")
		for i, prev := range req.PreviousResponses {
			fmt.Fprintf(&b, "--- draft %d ---\n%s\n", i+1, prev)
		}
		fmt.Fprintf(&b, "\nRevise according to these instructions: %s\n", req.RefinementInstructions)
	}

	return b.String()
}
