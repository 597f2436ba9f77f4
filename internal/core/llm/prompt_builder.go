package llm

import (
	"fmt"
	"strings"
)

// ReplyContext describes the inbound message an automated reply answers
type ReplyContext struct {
	Platform    string
	Channel     string // "comment", "message" or "form_submission"
	AuthorName  string
	Text        string
	Instruction string
}

// BuildReplyPrompt returns the system prompt and user message for a reply
func BuildReplyPrompt(rc ReplyContext) (string, string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You write short automated replies for a business on %s.\n", rc.Platform))
	switch rc.Channel {
	case "comment":
		sb.WriteString("The reply answers a public comment, so keep it under 2 sentences.\n")
	case "form_submission":
		sb.WriteString("The reply follows up on a website form submission.\n")
	default:
		sb.WriteString("The reply is a private message.\n")
	}
	if rc.Instruction != "" {
		sb.WriteString("\nBusiness instructions:\n")
		sb.WriteString(rc.Instruction)
		sb.WriteString("\n")
	}

	sb.WriteString("\nRules:\n")
	sb.WriteString("- Be friendly and professional\n")
	sb.WriteString("- Reply in the language of the customer\n")
	sb.WriteString("- Never invent prices, stock or promises\n")
	sb.WriteString("- Output only the reply text\n")

	var user strings.Builder
	if rc.AuthorName != "" {
		user.WriteString(fmt.Sprintf("Customer %s wrote:\n", rc.AuthorName))
	} else {
		user.WriteString("Customer wrote:\n")
	}
	user.WriteString(rc.Text)

	return sb.String(), user.String()
}
