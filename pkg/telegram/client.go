package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	errs "tgscraper/pkg/errors"
	"tgscraper/pkg/logger"
)

// Client fetches group history over MTProto. It consumes a ready API handle;
// session lifecycle and authorization live in Run.
type Client struct {
	api    *tg.Client
	logger logger.Logger
}

// NewClient wraps a raw MTProto API handle.
func NewClient(api *tg.Client, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Client{api: api, logger: log}
}

// ResolveGroup resolves a normalized group reference to a live group handle.
func (c *Client) ResolveGroup(ctx context.Context, ref GroupRef) (*Group, error) {
	c.logger.DebugWithFields("resolving group", map[string]interface{}{
		"group": ref.String(),
	})

	switch {
	case ref.Username != "":
		return c.resolveUsername(ctx, ref)
	case ref.InviteHash != "":
		return c.resolveInvite(ctx, ref)
	default:
		return c.resolveID(ctx, ref)
	}
}

func (c *Client) resolveUsername(ctx context.Context, ref GroupRef) (*Group, error) {
	resolved, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: ref.Username,
	})
	if err != nil {
		return nil, mapRPCError(err)
	}

	for _, chat := range resolved.Chats {
		if g := groupFromChat(ref, chat); g != nil {
			return g, nil
		}
	}
	return nil, errs.New(errs.ErrorTypeGroupNotFound,
		fmt.Sprintf("%q does not refer to a group or channel", ref.Username))
}

func (c *Client) resolveInvite(ctx context.Context, ref GroupRef) (*Group, error) {
	invite, err := c.api.MessagesCheckChatInvite(ctx, ref.InviteHash)
	if err != nil {
		return nil, mapRPCError(err)
	}

	switch v := invite.(type) {
	case *tg.ChatInviteAlready:
		if g := groupFromChat(ref, v.Chat); g != nil {
			return g, nil
		}
	case *tg.ChatInvitePeek:
		if g := groupFromChat(ref, v.Chat); g != nil {
			return g, nil
		}
	case *tg.ChatInvite:
		// Valid invite, but the account is not a member: history is not visible.
		return nil, errs.New(errs.ErrorTypeAccessDenied,
			fmt.Sprintf("not a member of %q", v.Title))
	}
	return nil, errs.New(errs.ErrorTypeGroupNotFound, "invite does not refer to a group")
}

func (c *Client) resolveID(ctx context.Context, ref GroupRef) (*Group, error) {
	// Bot-API style channel IDs carry a -100 prefix.
	if channelID, ok := bareChannelID(ref.ID); ok {
		return c.resolveChannelID(ctx, ref, channelID)
	}
	if ref.ID < 0 {
		return c.resolveChannelID(ctx, ref, -ref.ID)
	}

	// Basic groups resolve without an access hash.
	chats, err := c.api.MessagesGetChats(ctx, []int64{ref.ID})
	if err != nil {
		return nil, mapRPCError(err)
	}
	for _, chat := range chatList(chats) {
		if g := groupFromChat(ref, chat); g != nil {
			return g, nil
		}
	}
	return nil, errs.New(errs.ErrorTypeGroupNotFound,
		fmt.Sprintf("no group with id %d", ref.ID))
}

func (c *Client) resolveChannelID(ctx context.Context, ref GroupRef, channelID int64) (*Group, error) {
	chats, err := c.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: channelID},
	})
	if err != nil {
		return nil, mapRPCError(err)
	}
	for _, chat := range chatList(chats) {
		if g := groupFromChat(ref, chat); g != nil {
			return g, nil
		}
	}
	return nil, errs.New(errs.ErrorTypeGroupNotFound,
		fmt.Sprintf("no channel with id %d", channelID))
}

// FetchHistory retrieves one page of group history, newest-to-oldest,
// starting below offsetID (0 means the latest message).
func (c *Client) FetchHistory(ctx context.Context, group *Group, offsetID int64, limit int) ([]Message, error) {
	c.logger.DebugWithFields("fetching history page", map[string]interface{}{
		"group":     group.Ref.String(),
		"offset_id": offsetID,
		"limit":     limit,
	})

	history, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     group.peer,
		OffsetID: int(offsetID),
		Limit:    limit,
	})
	if err != nil {
		return nil, mapRPCError(err)
	}

	var (
		raw   []tg.MessageClass
		users []tg.UserClass
	)
	switch v := history.(type) {
	case *tg.MessagesChannelMessages:
		raw, users = v.Messages, v.Users
	case *tg.MessagesMessagesSlice:
		raw, users = v.Messages, v.Users
	case *tg.MessagesMessages:
		raw, users = v.Messages, v.Users
	default:
		return nil, errs.New(errs.ErrorTypeParsing,
			fmt.Sprintf("unexpected history response %T", history))
	}

	return convertMessages(raw, users), nil
}

func bareChannelID(id int64) (int64, bool) {
	const marker = -1000000000000
	if id < marker {
		return -id + marker, true
	}
	return 0, false
}

func groupFromChat(ref GroupRef, chat tg.ChatClass) *Group {
	switch v := chat.(type) {
	case *tg.Channel:
		return &Group{
			Ref:   ref,
			Title: v.Title,
			peer:  &tg.InputPeerChannel{ChannelID: v.ID, AccessHash: v.AccessHash},
		}
	case *tg.Chat:
		return &Group{
			Ref:   ref,
			Title: v.Title,
			peer:  &tg.InputPeerChat{ChatID: v.ID},
		}
	}
	return nil
}

func chatList(chats tg.MessagesChatsClass) []tg.ChatClass {
	switch v := chats.(type) {
	case *tg.MessagesChats:
		return v.Chats
	case *tg.MessagesChatsSlice:
		return v.Chats
	}
	return nil
}

// mapRPCError translates MTProto failures into the pipeline taxonomy.
func mapRPCError(err error) error {
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return errs.FloodWait(wait)
	}

	switch {
	case tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID", "PEER_ID_INVALID",
		"CHAT_ID_INVALID", "CHANNEL_INVALID", "INVITE_HASH_INVALID"):
		return errs.Wrap(errs.ErrorTypeGroupNotFound, "group could not be resolved", err)
	case tgerr.Is(err, "CHANNEL_PRIVATE", "CHAT_FORBIDDEN", "INVITE_HASH_EXPIRED"):
		return errs.Wrap(errs.ErrorTypeAccessDenied, "group is not accessible", err)
	case tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "AUTH_KEY_INVALID", "SESSION_REVOKED",
		"SESSION_EXPIRED", "USER_DEACTIVATED"):
		return errs.Wrap(errs.ErrorTypeAuth, "session is invalid or expired", err)
	}

	var rpc *tgerr.Error
	if errors.As(err, &rpc) {
		return errs.Wrap(errs.ErrorTypeUnknown, fmt.Sprintf("rpc error %s", rpc.Type), err)
	}

	// Everything below RPC level is transport trouble and worth a retry.
	return errs.Wrap(errs.ErrorTypeNetwork, "transport error", err)
}
