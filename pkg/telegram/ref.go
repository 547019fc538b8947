package telegram

import (
	"fmt"
	"strconv"
	"strings"

	errs "tgscraper/pkg/errors"
)

// GroupRef is the canonical form of a group identifier. Exactly one of
// Username, ID or InviteHash is set after parsing.
type GroupRef struct {
	Username   string
	ID         int64
	InviteHash string
}

// ParseGroupRef normalizes the accepted identifier spellings to a single
// canonical reference: bare usernames, "@name", t.me / telegram.me links,
// invite links (t.me/+hash, t.me/joinchat/hash) and numeric IDs.
func ParseGroupRef(raw string) (GroupRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return GroupRef{}, errs.New(errs.ErrorTypeGroupNotFound, "empty group identifier")
	}

	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	for _, host := range []string{"t.me/", "telegram.me/", "telegram.dog/"} {
		if strings.HasPrefix(s, host) {
			s = strings.TrimPrefix(s, host)
			break
		}
	}
	s = strings.TrimSuffix(s, "/")

	if hash, ok := strings.CutPrefix(s, "joinchat/"); ok {
		return inviteRef(hash)
	}
	if hash, ok := strings.CutPrefix(s, "+"); ok && !isNumeric(hash) {
		return inviteRef(hash)
	}

	s = strings.TrimPrefix(s, "@")

	if isNumeric(s) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return GroupRef{}, errs.Wrap(errs.ErrorTypeGroupNotFound, "invalid numeric identifier", err)
		}
		return GroupRef{ID: id}, nil
	}

	if !validUsername(s) {
		return GroupRef{}, errs.New(errs.ErrorTypeGroupNotFound,
			fmt.Sprintf("invalid group identifier %q", raw))
	}

	return GroupRef{Username: strings.ToLower(s)}, nil
}

func inviteRef(hash string) (GroupRef, error) {
	if hash == "" {
		return GroupRef{}, errs.New(errs.ErrorTypeGroupNotFound, "empty invite hash")
	}
	return GroupRef{InviteHash: hash}, nil
}

func isNumeric(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validUsername(s string) bool {
	if len(s) < 4 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// String returns the canonical identifier used in logs and error context.
func (r GroupRef) String() string {
	switch {
	case r.Username != "":
		return r.Username
	case r.InviteHash != "":
		return "+" + r.InviteHash
	default:
		return strconv.FormatInt(r.ID, 10)
	}
}

// MessageURL builds the canonical permalink for a message. Permalinks are
// only well-defined for public usernames; private and numeric references
// yield an empty string.
func (r GroupRef) MessageURL(messageID int64) string {
	if r.Username == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s/%d", r.Username, messageID)
}
