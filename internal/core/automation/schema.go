package automation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const platformEnum = `["", "facebook", "instagram", "whatsapp", "website_form"]`

const keywordTriggerSchema = `{
  "type": "object",
  "properties": {
    "platform": {"type": "string", "enum": ` + platformEnum + `},
    "keywords": {"type": "array", "items": {"type": "string"}},
    "exclude_keywords": {"type": "array", "items": {"type": "string"}},
    "event_kinds": {
      "type": "array",
      "items": {"type": "string", "enum": ["comment", "message", "form_submission"]}
    }
  }
}`

const scheduleTriggerSchema = `{
  "type": "object",
  "required": ["schedule"],
  "properties": {
    "schedule": {"type": "string", "minLength": 1},
    "timezone": {"type": "string"}
  }
}`

const manualTriggerSchema = `{"type": "object"}`

// body: template text, or use_ai=true
const replyBodyProperties = `
    "template": {"type": "string"},
    "use_ai": {"type": "boolean"},
    "ai_prompt": {"type": "string"},
    "fallback_template": {"type": "string"},
    "delay_seconds": {"type": "integer", "minimum": 0, "maximum": 900}`

const replyBodyRule = `
  "anyOf": [
    {"required": ["template"], "properties": {"template": {"minLength": 1}}},
    {"required": ["use_ai"], "properties": {"use_ai": {"const": true}}}
  ]`

const directMessageSchema = `{
  "type": "object",
  "properties": {` + replyBodyProperties + `,
    "recipient_id": {"type": "string"},
    "platform": {"type": "string", "enum": ` + platformEnum + `},
    "channel_id": {"type": "string"}
  },` + replyBodyRule + `
}`

const publicReplySchema = `{
  "type": "object",
  "properties": {` + replyBodyProperties + `
  },` + replyBodyRule + `
}`

const emailSchema = `{
  "type": "object",
  "required": ["subject"],
  "properties": {` + replyBodyProperties + `,
    "to": {"type": "string"},
    "recipient": {"type": "string", "enum": ["", "author", "fixed"]},
    "subject": {"type": "string", "minLength": 1}
  },` + replyBodyRule + `
}`

const webhookSchema = `{
  "type": "object",
  "required": ["url"],
  "properties": {
    "url": {"type": "string", "pattern": "^https?://"},
    "headers": {"type": "object", "additionalProperties": {"type": "string"}},
    "secret": {"type": "string"},
    "timeout_seconds": {"type": "integer", "minimum": 1, "maximum": 30},
    "delay_seconds": {"type": "integer", "minimum": 0, "maximum": 900}
  }
}`

var configSchemaSources = map[string]string{
	"trigger_keyword.json": keywordTriggerSchema,
	"trigger_time.json":    scheduleTriggerSchema,
	"trigger_manual.json":  manualTriggerSchema,
	"action_dm.json":       directMessageSchema,
	"action_reply.json":    publicReplySchema,
	"action_email.json":    emailSchema,
	"action_webhook.json":  webhookSchema,
}

var (
	schemaOnce     sync.Once
	compiledSchema map[string]*jsonschema.Schema
	schemaErr      error
)

func compileSchemas() {
	compiledSchema = make(map[string]*jsonschema.Schema, len(configSchemaSources))
	for name, src := range configSchemaSources {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
			schemaErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			schemaErr = fmt.Errorf("compile schema %s: %w", name, err)
			return
		}
		compiledSchema[name] = schema
	}
}

func triggerSchemaName(tt TriggerType) string {
	switch tt {
	case TriggerComment, TriggerKeyword:
		return "trigger_keyword.json"
	case TriggerTime:
		return "trigger_time.json"
	case TriggerManual:
		return "trigger_manual.json"
	}
	return ""
}

func actionSchemaName(at ActionType) string {
	switch at {
	case ActionSendDM:
		return "action_dm.json"
	case ActionSendPublicReply:
		return "action_reply.json"
	case ActionSendEmail:
		return "action_email.json"
	case ActionSendWebhook:
		return "action_webhook.json"
	}
	return ""
}

// validateConfig checks raw against a named schema. An empty name means the
// type is unknown and is reported by the decoder instead.
func validateConfig(name string, raw []byte) error {
	if name == "" {
		return nil
	}
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return schemaErr
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return compiledSchema[name].Validate(doc)
}
