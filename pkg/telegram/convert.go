package telegram

import (
	"time"

	"github.com/gotd/td/tg"
)

// convertMessages maps raw history messages to the domain view, preserving
// the order the server returned them in. Service messages and holes are
// dropped; a single unparseable message never fails the page.
func convertMessages(raw []tg.MessageClass, users []tg.UserClass) []Message {
	byID := userIndex(users)

	out := make([]Message, 0, len(raw))
	for _, mc := range raw {
		m, ok := mc.(*tg.Message)
		if !ok {
			continue
		}
		out = append(out, Message{
			ID:       int64(m.ID),
			Date:     time.Unix(int64(m.Date), 0).UTC(),
			Text:     m.Message,
			Sender:   senderOf(m, byID),
			Document: documentOf(m),
		})
	}
	return out
}

func userIndex(users []tg.UserClass) map[int64]*tg.User {
	byID := make(map[int64]*tg.User, len(users))
	for _, uc := range users {
		if u, ok := uc.(*tg.User); ok {
			byID[u.ID] = u
		}
	}
	return byID
}

// senderOf resolves the message author from the page's user list. Anonymous
// and channel-signed posts have no user author and yield nil.
func senderOf(m *tg.Message, byID map[int64]*tg.User) *Sender {
	peer, ok := m.GetFromID()
	if !ok {
		return nil
	}
	user, ok := peer.(*tg.PeerUser)
	if !ok {
		return nil
	}
	u, ok := byID[user.UserID]
	if !ok {
		return nil
	}
	return &Sender{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}

// documentOf extracts a generic file attachment. Photos, stickers and other
// inline media without a document payload do not qualify.
func documentOf(m *tg.Message) *Document {
	media, ok := m.GetMedia()
	if !ok {
		return nil
	}
	md, ok := media.(*tg.MessageMediaDocument)
	if !ok {
		return nil
	}
	docClass, ok := md.GetDocument()
	if !ok {
		return nil
	}
	doc, ok := docClass.(*tg.Document)
	if !ok {
		return nil
	}

	out := &Document{
		MimeType: doc.MimeType,
		Size:     doc.Size,
	}
	for _, attr := range doc.Attributes {
		if fn, ok := attr.(*tg.DocumentAttributeFilename); ok {
			out.FileName = fn.FileName
			break
		}
	}
	return out
}
