package normalizer

import (
	"encoding/json"
	"time"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// metaEnvelope is the outer shape shared by Facebook, Instagram and WhatsApp
// deliveries. Entries stay raw so each one decodes on its own.
type metaEnvelope struct {
	Object string            `json:"object"`
	Entry  []json.RawMessage `json:"entry"`
}

type metaEntry struct {
	ID        string            `json:"id"`
	Time      int64             `json:"time"`
	Changes   []json.RawMessage `json:"changes"`
	Messaging []json.RawMessage `json:"messaging"`
}

type metaUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type metaRef struct {
	ID string `json:"id"`
}

type metaAttachment struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

type metaMessage struct {
	Mid         string           `json:"mid"`
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	IsEcho      bool             `json:"is_echo"`
	Attachments []metaAttachment `json:"attachments"`
}

// metaMessaging is one Messenger / Instagram Direct event
type metaMessaging struct {
	Sender    metaRef      `json:"sender"`
	Recipient metaRef      `json:"recipient"`
	Timestamp int64        `json:"timestamp"`
	Message   *metaMessage `json:"message"`
}

// decodeEnvelope rejects bodies that are not a Meta envelope for object
func decodeEnvelope(raw []byte, object string) (metaEnvelope, error) {
	var env metaEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, malformed("invalid json envelope: %v", err)
	}
	if env.Object != "" && env.Object != object {
		return env, malformed("unexpected object %q, want %q", env.Object, object)
	}
	if env.Object == "" && env.Entry == nil {
		return env, malformed("missing object and entry")
	}
	return env, nil
}

// changeFunc converts one entry change; it reports skipped (malformed) and
// ignored items through the result.
type changeFunc func(entry metaEntry, change json.RawMessage, res *Result)

// metaNormalizer walks entry[].changes[] and entry[].messaging[] in order
type metaNormalizer struct {
	platform automation.Platform
	object   string
	now      func() time.Time
	change   changeFunc
}

func (n *metaNormalizer) Platform() automation.Platform { return n.platform }

func (n *metaNormalizer) Normalize(raw []byte) (Result, error) {
	env, err := decodeEnvelope(raw, n.object)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, rawEntry := range env.Entry {
		var entry metaEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			res.Skipped++
			continue
		}
		for _, change := range entry.Changes {
			n.change(entry, change, &res)
		}
		for _, rawMsg := range entry.Messaging {
			n.messaging(entry, rawMsg, &res)
		}
	}

	receivedAt := n.now().UTC()
	for i := range res.Events {
		res.Events[i].Platform = n.platform
		res.Events[i].ReceivedAt = receivedAt
	}
	return res, nil
}

// messaging handles Messenger and Instagram Direct messages.
// id: message.mid -> message.id; text: message.text -> attachments[0].title.
func (n *metaNormalizer) messaging(entry metaEntry, raw json.RawMessage, res *Result) {
	var m metaMessaging
	if err := json.Unmarshal(raw, &m); err != nil {
		res.Skipped++
		return
	}
	if m.Message == nil || m.Message.IsEcho {
		res.Ignored++
		return
	}

	id := firstNonEmpty(m.Message.Mid, m.Message.ID)
	if id == "" || m.Sender.ID == "" {
		res.Skipped++
		return
	}
	if m.Sender.ID == entry.ID {
		res.Ignored++
		return
	}

	var attachmentTitle string
	if len(m.Message.Attachments) > 0 {
		attachmentTitle = m.Message.Attachments[0].Title
	}

	res.Events = append(res.Events, automation.InboundEvent{
		Kind:       automation.KindMessage,
		ExternalID: id,
		AuthorID:   m.Sender.ID,
		Text:       firstNonEmpty(m.Message.Text, attachmentTitle),
		ChannelID:  firstNonEmpty(m.Recipient.ID, entry.ID),
	})
}
