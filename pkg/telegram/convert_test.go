package telegram

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawDocMessage(id int, date time.Time, text string, doc *tg.Document, fromUser int64) *tg.Message {
	m := &tg.Message{
		ID:      id,
		Date:    int(date.Unix()),
		Message: text,
	}
	if doc != nil {
		media := &tg.MessageMediaDocument{}
		media.SetDocument(doc)
		m.SetMedia(media)
	}
	if fromUser != 0 {
		m.SetFromID(&tg.PeerUser{UserID: fromUser})
	}
	return m
}

func TestConvertMessages(t *testing.T) {
	sent := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	doc := &tg.Document{
		MimeType: "application/pdf",
		Size:     1048576,
		Attributes: []tg.DocumentAttributeClass{
			&tg.DocumentAttributeFilename{FileName: "report.pdf"},
		},
	}

	raw := []tg.MessageClass{
		rawDocMessage(42, sent, "the report", doc, 7),
		rawDocMessage(41, sent, "no attachment", nil, 7),
		&tg.MessageService{ID: 40},
		&tg.MessageEmpty{ID: 39},
	}
	users := []tg.UserClass{
		&tg.User{ID: 7, FirstName: "Alice", LastName: "Smith", Username: "alice"},
	}

	out := convertMessages(raw, users)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, int64(42), first.ID)
	assert.Equal(t, sent, first.Date)
	assert.Equal(t, "the report", first.Text)
	require.NotNil(t, first.Sender)
	assert.Equal(t, "Alice Smith", first.Sender.DisplayName())
	require.NotNil(t, first.Document)
	assert.Equal(t, "report.pdf", first.Document.FileName)
	assert.Equal(t, "application/pdf", first.Document.MimeType)
	assert.Equal(t, int64(1048576), first.Document.Size)

	second := out[1]
	assert.Equal(t, int64(41), second.ID)
	assert.Nil(t, second.Document)
}

func TestConvertMessagesUnknownSender(t *testing.T) {
	sent := time.Now().Truncate(time.Second).UTC()

	// Author not present in the page's user list
	raw := []tg.MessageClass{rawDocMessage(1, sent, "", nil, 99)}
	out := convertMessages(raw, nil)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Sender)

	// Anonymous post with no author at all
	raw = []tg.MessageClass{rawDocMessage(2, sent, "", nil, 0)}
	out = convertMessages(raw, nil)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Sender)
	assert.Equal(t, "Unknown", out[0].Sender.DisplayName())
}

func TestConvertMessagesSkipsNonDocumentMedia(t *testing.T) {
	m := &tg.Message{ID: 5, Date: int(time.Now().Unix())}
	m.SetMedia(&tg.MessageMediaPhoto{})

	out := convertMessages([]tg.MessageClass{m}, nil)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Document)
}

func TestDocumentSubtype(t *testing.T) {
	assert.Equal(t, "zip", (&Document{MimeType: "application/zip"}).Subtype())
	assert.Equal(t, "pdf", (&Document{MimeType: "application/pdf"}).Subtype())
	assert.Empty(t, (&Document{MimeType: "weird"}).Subtype())
	assert.Empty(t, (&Document{}).Subtype())
	var nilDoc *Document
	assert.Empty(t, nilDoc.Subtype())
}

func TestSenderDisplayName(t *testing.T) {
	assert.Equal(t, "Alice Smith", (&Sender{FirstName: "Alice", LastName: "Smith"}).DisplayName())
	assert.Equal(t, "Alice", (&Sender{FirstName: "Alice"}).DisplayName())
	assert.Equal(t, "@bob", (&Sender{Username: "bob"}).DisplayName())
	assert.Equal(t, "Unknown", (&Sender{}).DisplayName())

	var nilSender *Sender
	assert.Equal(t, "Unknown", nilSender.DisplayName())
}
