package normalizer

import (
	"encoding/json"
	"time"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

type waContact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type waCaption struct {
	Caption string `json:"caption"`
}

type waTitle struct {
	Title string `json:"title"`
}

// waMessage covers the Cloud API message types that can carry text.
// Text aliases, highest priority first: text.body, button.text,
// interactive.button_reply.title, interactive.list_reply.title,
// image.caption, video.caption, document.caption.
type waMessage struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text"`
	Button *struct {
		Text string `json:"text"`
	} `json:"button"`
	Interactive *struct {
		ButtonReply *waTitle `json:"button_reply"`
		ListReply   *waTitle `json:"list_reply"`
	} `json:"interactive"`
	Image    *waCaption `json:"image"`
	Video    *waCaption `json:"video"`
	Document *waCaption `json:"document"`
}

type waValue struct {
	MessagingProduct string `json:"messaging_product"`
	Metadata         struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Contacts []waContact       `json:"contacts"`
	Messages []json.RawMessage `json:"messages"`
	Statuses []json.RawMessage `json:"statuses"`
}

type waChange struct {
	Field string  `json:"field"`
	Value waValue `json:"value"`
}

// NewWhatsApp returns the normalizer for object=whatsapp_business_account
func NewWhatsApp(now func() time.Time) Normalizer {
	return &metaNormalizer{
		platform: automation.PlatformWhatsApp,
		object:   "whatsapp_business_account",
		now:      now,
		change:   whatsappChange,
	}
}

func whatsappChange(entry metaEntry, raw json.RawMessage, res *Result) {
	var c waChange
	if err := json.Unmarshal(raw, &c); err != nil {
		res.Skipped++
		return
	}
	if c.Field != "" && c.Field != "messages" {
		res.Ignored++
		return
	}

	res.Ignored += len(c.Value.Statuses)

	for _, rawMsg := range c.Value.Messages {
		var m waMessage
		if err := json.Unmarshal(rawMsg, &m); err != nil {
			res.Skipped++
			continue
		}
		if m.ID == "" || m.From == "" {
			res.Skipped++
			continue
		}
		if m.Type == "reaction" || m.Type == "system" || m.Type == "unsupported" {
			res.Ignored++
			continue
		}

		res.Events = append(res.Events, automation.InboundEvent{
			Kind:        automation.KindMessage,
			ExternalID:  m.ID,
			AuthorID:    m.From,
			AuthorName:  contactName(c.Value.Contacts, m.From),
			AuthorPhone: m.From,
			Text:        whatsappText(m),
			ChannelID:   firstNonEmpty(c.Value.Metadata.PhoneNumberID, entry.ID),
		})
	}
}

// contactName prefers the contact whose wa_id matches the sender, then the
// first contact of the change
func contactName(contacts []waContact, from string) string {
	for _, c := range contacts {
		if c.WaID == from && c.Profile.Name != "" {
			return c.Profile.Name
		}
	}
	if len(contacts) > 0 {
		return contacts[0].Profile.Name
	}
	return ""
}

func whatsappText(m waMessage) string {
	var candidates []string
	if m.Text != nil {
		candidates = append(candidates, m.Text.Body)
	}
	if m.Button != nil {
		candidates = append(candidates, m.Button.Text)
	}
	if m.Interactive != nil {
		if m.Interactive.ButtonReply != nil {
			candidates = append(candidates, m.Interactive.ButtonReply.Title)
		}
		if m.Interactive.ListReply != nil {
			candidates = append(candidates, m.Interactive.ListReply.Title)
		}
	}
	for _, media := range []*waCaption{m.Image, m.Video, m.Document} {
		if media != nil {
			candidates = append(candidates, media.Caption)
		}
	}
	return firstNonEmpty(candidates...)
}
