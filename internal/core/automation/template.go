package automation

import (
	"regexp"
	"strings"
	"time"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// TemplateVars returns the values a {placeholder} can resolve to. Form
// fields are exposed under their own names; built-in names win on conflict.
func TemplateVars(event InboundEvent) map[string]string {
	vars := make(map[string]string, len(event.Fields)+14)
	for k, v := range event.Fields {
		vars[k] = v
	}

	vars["author_id"] = event.AuthorID
	vars["author_name"] = event.AuthorName
	vars["author_email"] = event.AuthorEmail
	vars["author_phone"] = event.AuthorPhone
	vars["first_name"] = firstName(event.AuthorName)
	vars["text"] = event.Text
	vars["message"] = event.Text
	vars["platform"] = string(event.Platform)
	vars["event_kind"] = string(event.Kind)
	vars["external_id"] = event.ExternalID
	vars["channel_id"] = event.ChannelID
	vars["parent_id"] = event.ParentID
	vars["workspace_id"] = event.WorkspaceID.String()
	vars["agent_id"] = event.AgentID.String()
	if !event.ReceivedAt.IsZero() {
		vars["received_at"] = event.ReceivedAt.UTC().Format(time.RFC3339)
	}
	return vars
}

// Render replaces {placeholder} tokens with event values. Unknown
// placeholders are left untouched.
func Render(template string, event InboundEvent) string {
	if !strings.Contains(template, "{") {
		return template
	}
	vars := TemplateVars(event)
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSpace(match[1 : len(match)-1])
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
