package telegram

import (
	"strings"
	"time"

	"github.com/gotd/td/tg"
)

// Group is a resolved Telegram group or channel, ready for history fetches.
type Group struct {
	Ref   GroupRef
	Title string

	peer tg.InputPeerClass
}

// Message is the platform-independent view of one group message.
type Message struct {
	ID       int64
	Date     time.Time
	Text     string
	Sender   *Sender   // nil when the sender is unknown or hidden
	Document *Document // nil when the message carries no file attachment
}

// Sender identifies who sent a message.
type Sender struct {
	FirstName string
	LastName  string
	Username  string
}

// DisplayName resolves a human-readable sender identity:
// full name over username over "Unknown".
func (s *Sender) DisplayName() string {
	if s == nil {
		return "Unknown"
	}
	if s.FirstName != "" {
		if s.LastName != "" {
			return s.FirstName + " " + s.LastName
		}
		return s.FirstName
	}
	if s.Username != "" {
		return "@" + s.Username
	}
	return "Unknown"
}

// Document is a generic file attachment. Photos and stickers without a
// document payload are not represented here.
type Document struct {
	FileName string
	MimeType string
	Size     int64
}

// Subtype returns the MIME subtype of the document, or "" when unknown.
func (d *Document) Subtype() string {
	if d == nil {
		return ""
	}
	_, sub, ok := strings.Cut(d.MimeType, "/")
	if !ok {
		return ""
	}
	return sub
}
