package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

const (
	DefaultGraphBaseURL = "https://graph.facebook.com"
	DefaultGraphVersion = "v21.0"
)

// GraphClient talks to the Meta Graph API: Messenger and Instagram
// messaging, comment replies and the WhatsApp Cloud API.
// Documentation: https://developers.facebook.com/docs/graph-api
type GraphClient struct {
	client *resty.Client
	tokens TokenSource
}

type graphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

type messengerRecipient struct {
	ID        string `json:"id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
}

type messengerRequest struct {
	Recipient     messengerRecipient `json:"recipient"`
	MessagingType string             `json:"messaging_type,omitempty"`
	Message       struct {
		Text string `json:"text"`
	} `json:"message"`
}

type messengerResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

type cloudTextRequest struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

type cloudResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type commentReplyResponse struct {
	ID string `json:"id"`
}

// NewGraphClient creates a Graph API client. Requests carry the access token
// of the channel that received the event.
func NewGraphClient(baseURL, version string, tokens TokenSource) *GraphClient {
	if baseURL == "" {
		baseURL = DefaultGraphBaseURL
	}
	if version == "" {
		version = DefaultGraphVersion
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/"+version).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &GraphClient{client: client, tokens: tokens}
}

// SendMessage sends a DM. A request with CommentID becomes a private reply
// to that comment (Messenger / Instagram); WhatsApp uses the Cloud API.
func (g *GraphClient) SendMessage(ctx context.Context, req SendRequest) (SendResult, error) {
	token, err := g.tokens.AccessToken(ctx, req.Platform, req.ChannelID)
	if err != nil {
		return SendResult{}, err
	}

	switch req.Platform {
	case automation.PlatformFacebook, automation.PlatformInstagram:
		body := messengerRequest{MessagingType: "RESPONSE"}
		if req.CommentID != "" {
			body.Recipient.CommentID = req.CommentID
		} else {
			body.Recipient.ID = req.RecipientID
		}
		body.Message.Text = req.Text

		var out messengerResponse
		if err := g.post(ctx, token, "/"+req.ChannelID+"/messages", body, &out); err != nil {
			return SendResult{}, err
		}
		log.Debug().Str("platform", string(req.Platform)).Str("message_id", out.MessageID).Msg("📤 Graph message sent")
		return SendResult{ExternalMessageID: out.MessageID}, nil

	case automation.PlatformWhatsApp:
		body := cloudTextRequest{
			MessagingProduct: "whatsapp",
			RecipientType:    "individual",
			To:               cleanPhoneNumber(req.RecipientID),
			Type:             "text",
		}
		body.Text.Body = req.Text

		var out cloudResponse
		if err := g.post(ctx, token, "/"+req.ChannelID+"/messages", body, &out); err != nil {
			return SendResult{}, err
		}
		if len(out.Messages) == 0 {
			return SendResult{}, fmt.Errorf("whatsapp cloud api returned no message id")
		}
		log.Debug().Str("message_id", out.Messages[0].ID).Msg("📤 WhatsApp Cloud message sent")
		return SendResult{ExternalMessageID: out.Messages[0].ID}, nil

	default:
		return SendResult{}, ErrUnsupported
	}
}

// ReplyToComment posts a public reply under a Facebook or Instagram comment
func (g *GraphClient) ReplyToComment(ctx context.Context, req SendRequest) (SendResult, error) {
	var path string
	switch req.Platform {
	case automation.PlatformFacebook:
		path = "/" + req.CommentID + "/comments"
	case automation.PlatformInstagram:
		path = "/" + req.CommentID + "/replies"
	default:
		return SendResult{}, ErrUnsupported
	}
	if req.CommentID == "" {
		return SendResult{}, fmt.Errorf("comment id is required for a public reply")
	}

	token, err := g.tokens.AccessToken(ctx, req.Platform, req.ChannelID)
	if err != nil {
		return SendResult{}, err
	}

	var out commentReplyResponse
	if err := g.post(ctx, token, path, map[string]string{"message": req.Text}, &out); err != nil {
		return SendResult{}, err
	}
	log.Debug().Str("platform", string(req.Platform)).Str("reply_id", out.ID).Msg("💬 Public reply posted")
	return SendResult{ExternalMessageID: out.ID}, nil
}

func (g *GraphClient) post(ctx context.Context, token, path string, body, out interface{}) error {
	var apiErr graphError
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(body).
		SetResult(out).
		SetError(&apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("graph request %s failed: %w", path, err)
	}
	if resp.IsError() {
		if apiErr.Error.Message != "" {
			return fmt.Errorf("graph api error (status %d, code %d): %s", resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("graph api error (status %d): %s", resp.StatusCode(), truncate(resp.String(), 256))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
