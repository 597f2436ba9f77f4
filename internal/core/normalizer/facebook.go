package normalizer

import (
	"encoding/json"
	"time"

	"github.com/wisemantransports-ux/retail-assist-sub005/internal/core/automation"
)

// Facebook page feed aliases, highest priority first:
//
//	id:          comment_id, id
//	text:        message, text
//	author id:   from.id, sender_id
//	author name: from.name, sender_name
//	parent:      post_id, parent_id
type fbCommentValue struct {
	Item       string    `json:"item"`
	Verb       string    `json:"verb"`
	CommentID  string    `json:"comment_id"`
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	ParentID   string    `json:"parent_id"`
	Message    string    `json:"message"`
	Text       string    `json:"text"`
	From       *metaUser `json:"from"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
}

type fbChange struct {
	Field string         `json:"field"`
	Value fbCommentValue `json:"value"`
}

// NewFacebook returns the normalizer for object=page deliveries
func NewFacebook(now func() time.Time) Normalizer {
	return &metaNormalizer{
		platform: automation.PlatformFacebook,
		object:   "page",
		now:      now,
		change:   facebookChange,
	}
}

func facebookChange(entry metaEntry, raw json.RawMessage, res *Result) {
	var c fbChange
	if err := json.Unmarshal(raw, &c); err != nil {
		res.Skipped++
		return
	}
	if c.Field != "feed" || c.Value.Item != "comment" {
		res.Ignored++
		return
	}
	if c.Value.Verb != "" && c.Value.Verb != "add" {
		res.Ignored++
		return
	}

	v := c.Value
	var fromID, fromName string
	if v.From != nil {
		fromID, fromName = v.From.ID, v.From.Name
	}

	id := firstNonEmpty(v.CommentID, v.ID)
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
		AuthorName: firstNonEmpty(fromName, v.SenderName),
		Text:       firstNonEmpty(v.Message, v.Text),
		ChannelID:  entry.ID,
		ParentID:   firstNonEmpty(v.PostID, v.ParentID),
	})
}
