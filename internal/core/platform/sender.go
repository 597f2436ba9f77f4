// Package platform sends replies back to the social platforms.
package platform

import (
	"context"
	"errors"
	"strings"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// ErrUnsupported is returned for operations a platform cannot perform
var ErrUnsupported = errors.New("operation not supported on platform")

// SendRequest addresses one outbound message
type SendRequest struct {
	Platform    automation.Platform
	ChannelID   string // page id, IG account id or WhatsApp phone_number_id
	RecipientID string // user id, PSID or phone number
	CommentID   string // set to reply to a comment (privately or publicly)
	Text        string
}

// SendResult carries the platform id of the created message
type SendResult struct {
	ExternalMessageID string
}

// Sender is the DM / public reply API of the platforms
type Sender interface {
	SendMessage(ctx context.Context, req SendRequest) (SendResult, error)
	ReplyToComment(ctx context.Context, req SendRequest) (SendResult, error)
}

// TokenSource resolves the access token of a receiving channel
type TokenSource interface {
	AccessToken(ctx context.Context, platform automation.Platform, channelID string) (string, error)
}

// Router picks the transport per platform. WhatsApp goes through the linked
// device transport when one is configured, otherwise through the Cloud API.
type Router struct {
	graph    Sender
	whatsapp Sender
}

// NewRouter creates a router. whatsapp may be nil.
func NewRouter(graph Sender, whatsapp Sender) *Router {
	return &Router{graph: graph, whatsapp: whatsapp}
}

func (r *Router) SendMessage(ctx context.Context, req SendRequest) (SendResult, error) {
	switch req.Platform {
	case automation.PlatformWhatsApp:
		if r.whatsapp != nil {
			return r.whatsapp.SendMessage(ctx, req)
		}
		return r.graph.SendMessage(ctx, req)
	case automation.PlatformFacebook, automation.PlatformInstagram:
		return r.graph.SendMessage(ctx, req)
	default:
		return SendResult{}, ErrUnsupported
	}
}

func (r *Router) ReplyToComment(ctx context.Context, req SendRequest) (SendResult, error) {
	switch req.Platform {
	case automation.PlatformFacebook, automation.PlatformInstagram:
		return r.graph.ReplyToComment(ctx, req)
	default:
		return SendResult{}, ErrUnsupported
	}
}

// cleanPhoneNumber strips JID suffixes and a leading plus
func cleanPhoneNumber(phone string) string {
	if i := strings.Index(phone, "@"); i >= 0 {
		phone = phone[:i]
	}
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}
