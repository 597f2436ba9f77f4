// Package email sends automation emails through a transactional provider.
package email

import (
	"context"
	"fmt"
	"strings"
)

// Message is one outbound email
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Provider defines the interface for email providers
type Provider interface {
	Send(ctx context.Context, msg Message) (string, error)
	GetProviderName() string
}

// Service wraps the email provider
type Service struct {
	provider Provider
}

// NewService creates a new email service with the specified provider
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// NewProvider builds the provider named by EMAIL_PROVIDER
func NewProvider(name, brevoKey, resendKey, fromEmail, fromName string) (Provider, error) {
	switch strings.ToLower(name) {
	case "", "brevo":
		if brevoKey == "" {
			return nil, fmt.Errorf("BREVO_API_KEY is required")
		}
		return NewBrevoProvider(brevoKey, fromEmail, fromName), nil
	case "resend":
		if resendKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required")
		}
		return NewResendProvider(resendKey, fromEmail, fromName), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", name)
	}
}

// Send delivers the message and returns the provider message id
func (s *Service) Send(ctx context.Context, msg Message) (string, error) {
	if s == nil || s.provider == nil {
		return "", fmt.Errorf("no email provider configured")
	}
	if msg.To == "" {
		return "", fmt.Errorf("email recipient is required")
	}
	if msg.HTML == "" && msg.Text != "" {
		msg.HTML = textToHTML(msg.Text)
	}
	return s.provider.Send(ctx, msg)
}

// GetProviderName returns the name of the current provider
func (s *Service) GetProviderName() string {
	if s == nil || s.provider == nil {
		return "none"
	}
	return s.provider.GetProviderName()
}

// textToHTML wraps a plain text body in a minimal HTML document
func textToHTML(text string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	paragraphs := strings.Split(replacer.Replace(text), "\n\n")
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"></head><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(p, "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}
