package email

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const resendBaseURL = "https://api.resend.com"

// ResendProvider implements email sending via Resend API
type ResendProvider struct {
	fromEmail string
	fromName  string
	client    *resty.Client
}

// NewResendProvider creates a new Resend email provider
func NewResendProvider(apiKey, fromEmail, fromName string) *ResendProvider {
	return newResendProvider(resendBaseURL, apiKey, fromEmail, fromName)
}

func newResendProvider(baseURL, apiKey, fromEmail, fromName string) *ResendProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &ResendProvider{fromEmail: fromEmail, fromName: fromName, client: client}
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send sends an email via Resend API
func (p *ResendProvider) Send(ctx context.Context, msg Message) (string, error) {
	fromAddress := p.fromEmail
	if p.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", p.fromName, p.fromEmail)
	}

	reqBody := resendEmailRequest{
		From:    fromAddress,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}

	var out resendResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&out).
		Post("/emails")
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("resend API error (status %d): %s", resp.StatusCode(), resp.String())
	}

	return out.ID, nil
}

// GetProviderName returns the provider name
func (p *ResendProvider) GetProviderName() string {
	return "resend"
}
