package email

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const brevoBaseURL = "https://api.brevo.com/v3"

// BrevoProvider implements email sending via Brevo (formerly Sendinblue)
type BrevoProvider struct {
	fromEmail string
	fromName  string
	client    *resty.Client
}

// NewBrevoProvider creates a new Brevo email provider
func NewBrevoProvider(apiKey, fromEmail, fromName string) *BrevoProvider {
	return newBrevoProvider(brevoBaseURL, apiKey, fromEmail, fromName)
}

func newBrevoProvider(baseURL, apiKey, fromEmail, fromName string) *BrevoProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("api-key", apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &BrevoProvider{fromEmail: fromEmail, fromName: fromName, client: client}
}

type brevoEmailRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent,omitempty"`
	TextContent string         `json:"textContent,omitempty"`
}

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

// Send sends an email via Brevo API
func (p *BrevoProvider) Send(ctx context.Context, msg Message) (string, error) {
	reqBody := brevoEmailRequest{
		Sender:      brevoContact{Email: p.fromEmail, Name: p.fromName},
		To:          []brevoContact{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	}

	var out brevoResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&out).
		Post("/smtp/email")
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("brevo API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	return out.MessageID, nil
}

// GetProviderName returns the provider name
func (p *BrevoProvider) GetProviderName() string {
	return "brevo"
}
