package normalizer

import (
	"encoding/json"
	"time"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// Instagram comment aliases, highest priority first:
//
//	id:          id, comment_id
//	text:        text, message
//	author id:   from.id, sender_id
//	author name: from.username, from.name, username
//	parent:      media.id, media_id
type igCommentValue struct {
	ID        string    `json:"id"`
	CommentID string    `json:"comment_id"`
	Text      string    `json:"text"`
	Message   string    `json:"message"`
	From      *metaUser `json:"from"`
	SenderID  string    `json:"sender_id"`
	Username  string    `json:"username"`
	Media     *metaRef  `json:"media"`
	MediaID   string    `json:"media_id"`
}

type igChange struct {
	Field string         `json:"field"`
	Value igCommentValue `json:"value"`
}

// NewInstagram returns the normalizer for object=instagram deliveries
func NewInstagram(now func() time.Time) Normalizer {
	return &metaNormalizer{
		platform: automation.PlatformInstagram,
		object:   "instagram",
		now:      now,
		change:   instagramChange,
	}
}

func instagramChange(entry metaEntry, raw json.RawMessage, res *Result) {
	var c igChange
	if err := json.Unmarshal(raw, &c); err != nil {
		res.Skipped++
		return
	}
	if c.Field != "comments" && c.Field != "live_comments" {
		res.Ignored++
		return
	}

	v := c.Value
	var fromID, fromUsername, fromName string
	if v.From != nil {
		fromID, fromUsername, fromName = v.From.ID, v.From.Username, v.From.Name
	}
	var mediaID string
	if v.Media != nil {
		mediaID = v.Media.ID
	}

	id := firstNonEmpty(v.ID, v.CommentID)
	authorID := firstNonEmpty(fromID, v.SenderID)
	if id == "" || authorID == "" {
		res.Skipped++
		return
	}
	if authorID == entry.ID {
		res.Ignored++
		return
	}

	res.Events = append(res.Events, automation.InboundEvent{
		Kind:       automation.KindComment,
		ExternalID: id,
		AuthorID:   authorID,
		AuthorName: firstNonEmpty(fromUsername, fromName, v.Username),
		Text:       firstNonEmpty(v.Text, v.Message),
		ChannelID:  entry.ID,
		ParentID:   firstNonEmpty(mediaID, v.MediaID),
	})
}
