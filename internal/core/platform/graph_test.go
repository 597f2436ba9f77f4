package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) AccessToken(ctx context.Context, platform automation.Platform, channelID string) (string, error) {
	return s.token, s.err
}

type capturedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

func newGraphServer(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)
		captured = append(captured, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestGraphSendMessengerDM(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{"recipient_id":"user-1","message_id":"m_1"}`)
	client := NewGraphClient(srv.URL, "v21.0", staticTokens{token: "page-token"})

	res, err := client.SendMessage(context.Background(), SendRequest{
		Platform:    automation.PlatformFacebook,
		ChannelID:   "page-1",
		RecipientID: "user-1",
		Text:        "hello",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if res.ExternalMessageID != "m_1" {
		t.Fatalf("message id = %q", res.ExternalMessageID)
	}

	req := (*captured)[0]
	if req.Method != http.MethodPost || req.Path != "/v21.0/page-1/messages" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if req.Auth != "Bearer page-token" {
		t.Fatalf("auth header = %q", req.Auth)
	}
	recipient := req.Body["recipient"].(map[string]interface{})
	if recipient["id"] != "user-1" {
		t.Fatalf("recipient = %v", recipient)
	}
	message := req.Body["message"].(map[string]interface{})
	if message["text"] != "hello" {
		t.Fatalf("message = %v", message)
	}
}

func TestGraphPrivateReplyUsesCommentID(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{"message_id":"m_2"}`)
	client := NewGraphClient(srv.URL, "v21.0", staticTokens{token: "t"})

	_, err := client.SendMessage(context.Background(), SendRequest{
		Platform:  automation.PlatformInstagram,
		ChannelID: "ig-1",
		CommentID: "c-9",
		Text:      "check your inbox",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	recipient := (*captured)[0].Body["recipient"].(map[string]interface{})
	if recipient["comment_id"] != "c-9" {
		t.Fatalf("recipient = %v", recipient)
	}
	if _, ok := recipient["id"]; ok {
		t.Fatalf("recipient id should be omitted: %v", recipient)
	}
}

func TestGraphSendWhatsAppCloud(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{"messages":[{"id":"wamid.1"}]}`)
	client := NewGraphClient(srv.URL, "v21.0", staticTokens{token: "t"})

	res, err := client.SendMessage(context.Background(), SendRequest{
		Platform:    automation.PlatformWhatsApp,
		ChannelID:   "phone-id",
		RecipientID: "+6281234",
		Text:        "hi",
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if res.ExternalMessageID != "wamid.1" {
		t.Fatalf("message id = %q", res.ExternalMessageID)
	}
	req := (*captured)[0]
	if req.Path != "/v21.0/phone-id/messages" {
		t.Fatalf("path = %s", req.Path)
	}
	if req.Body["messaging_product"] != "whatsapp" || req.Body["to"] != "6281234" {
		t.Fatalf("body = %v", req.Body)
	}
}

func TestGraphReplyToComment(t *testing.T) {
	tests := []struct {
		platform automation.Platform
		path     string
	}{
		{automation.PlatformFacebook, "/v21.0/c-1/comments"},
		{automation.PlatformInstagram, "/v21.0/c-1/replies"},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			srv, captured := newGraphServer(t, http.StatusOK, `{"id":"reply-1"}`)
			client := NewGraphClient(srv.URL, "v21.0", staticTokens{token: "t"})

			res, err := client.ReplyToComment(context.Background(), SendRequest{
				Platform:  tt.platform,
				ChannelID: "page-1",
				CommentID: "c-1",
				Text:      "thanks!",
			})
			if err != nil {
				t.Fatalf("ReplyToComment: %v", err)
			}
			if res.ExternalMessageID != "reply-1" {
				t.Fatalf("id = %q", res.ExternalMessageID)
			}
			if (*captured)[0].Path != tt.path {
				t.Fatalf("path = %s, want %s", (*captured)[0].Path, tt.path)
			}
			if (*captured)[0].Body["message"] != "thanks!" {
				t.Fatalf("body = %v", (*captured)[0].Body)
			}
		})
	}
}

func TestGraphReplyToCommentUnsupported(t *testing.T) {
	client := NewGraphClient("http://127.0.0.1:1", "", staticTokens{token: "t"})
	_, err := client.ReplyToComment(context.Background(), SendRequest{Platform: automation.PlatformWhatsApp, CommentID: "x"})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestGraphErrorResponse(t *testing.T) {
	srv, _ := newGraphServer(t, http.StatusBadRequest, `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`)
	client := NewGraphClient(srv.URL, "v21.0", staticTokens{token: "bad"})

	_, err := client.SendMessage(context.Background(), SendRequest{
		Platform:    automation.PlatformFacebook,
		ChannelID:   "page-1",
		RecipientID: "u",
		Text:        "x",
	})
	if err == nil || !strings.Contains(err.Error(), "Invalid OAuth access token") {
		t.Fatalf("err = %v", err)
	}
}

func TestGraphTokenError(t *testing.T) {
	tokenErr := errors.New("no channel")
	client := NewGraphClient("http://127.0.0.1:1", "", staticTokens{err: tokenErr})
	_, err := client.SendMessage(context.Background(), SendRequest{Platform: automation.PlatformFacebook})
	if !errors.Is(err, tokenErr) {
		t.Fatalf("err = %v", err)
	}
}

type recordingSender struct {
	name  string
	calls []string
}

func (r *recordingSender) SendMessage(ctx context.Context, req SendRequest) (SendResult, error) {
	r.calls = append(r.calls, "dm")
	return SendResult{ExternalMessageID: r.name}, nil
}

func (r *recordingSender) ReplyToComment(ctx context.Context, req SendRequest) (SendResult, error) {
	r.calls = append(r.calls, "reply")
	return SendResult{ExternalMessageID: r.name}, nil
}

func TestRouter(t *testing.T) {
	graph := &recordingSender{name: "graph"}
	wa := &recordingSender{name: "whatsmeow"}
	ctx := context.Background()

	router := NewRouter(graph, wa)
	res, _ := router.SendMessage(ctx, SendRequest{Platform: automation.PlatformWhatsApp})
	if res.ExternalMessageID != "whatsmeow" {
		t.Fatalf("whatsapp routed to %q", res.ExternalMessageID)
	}
	res, _ = router.SendMessage(ctx, SendRequest{Platform: automation.PlatformInstagram})
	if res.ExternalMessageID != "graph" {
		t.Fatalf("instagram routed to %q", res.ExternalMessageID)
	}
	if _, err := router.SendMessage(ctx, SendRequest{Platform: automation.PlatformWebsiteForm}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("website form err = %v", err)
	}
	if _, err := router.ReplyToComment(ctx, SendRequest{Platform: automation.PlatformWhatsApp}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("whatsapp reply err = %v", err)
	}

	cloudOnly := NewRouter(graph, nil)
	res, _ = cloudOnly.SendMessage(ctx, SendRequest{Platform: automation.PlatformWhatsApp})
	if res.ExternalMessageID != "graph" {
		t.Fatalf("whatsapp without linked device routed to %q", res.ExternalMessageID)
	}
}

func TestCleanPhoneNumber(t *testing.T) {
	cases := map[string]string{
		"+62812":               "62812",
		"62812@s.whatsapp.net": "62812",
		" 62812 ":              "62812",
	}
	for in, want := range cases {
		if got := cleanPhoneNumber(in); got != want {
			t.Errorf("cleanPhoneNumber(%q) = %q, want %q", in, got, want)
		}
	}
}
