package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/glintlabs/glint/internal/connector"
)

// MTProtoClient adapts the gotd/td MTProto client to the narrow Client
// surface the connector needs.
type MTProtoClient struct {
	api    *tg.Client
	cancel context.CancelFunc
	done   chan error
}

// DialMTProto connects and verifies authorization. A session without prior
// login returns connector.ErrAuthRequired instead of prompting; the caller
// completes the login flow through its own front end and retries.
func DialMTProto(ctx context.Context, apiID int, apiHash, sessionFile string) (*MTProtoClient, error) {
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: sessionFile},
	})

	// client.Run owns the connection lifetime; keep it alive in the
	// background until Close cancels it.
	runCtx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- client.Run(runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ready:
	case err := <-done:
		cancel()
		return nil, &connector.TransientError{Op: "telegram: connect", Err: err}
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}

	status, err := client.Auth().Status(ctx)
	if err != nil {
		cancel()
		return nil, &connector.TransientError{Op: "telegram: auth status", Err: err}
	}
	if !status.Authorized {
		cancel()
		return nil, connector.ErrAuthRequired
	}

	return &MTProtoClient{api: client.API(), cancel: cancel, done: done}, nil
}

// Resolve looks up a broadcast channel by username.
func (c *MTProtoClient) Resolve(ctx context.Context, username string) (Channel, error) {
	resolved, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return Channel{}, mapRPCError("resolve "+username, username, err)
	}

	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			return Channel{ID: ch.ID, AccessHash: ch.AccessHash, Username: ch.Username}, nil
		}
	}
	return Channel{}, &connector.ResolutionError{Source: username, Reason: "not a broadcast channel"}
}

// History returns up to limit messages older than offsetID, newest first.
func (c *MTProtoClient) History(ctx context.Context, ch Channel, offsetID, limit int) ([]Message, error) {
	res, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash},
		OffsetID: offsetID,
		Limit:    limit,
	})
	if err != nil {
		return nil, mapRPCError("history "+ch.Username, ch.Username, err)
	}

	var raw []tg.MessageClass
	switch v := res.(type) {
	case *tg.MessagesChannelMessages:
		raw = v.Messages
	case *tg.MessagesMessagesSlice:
		raw = v.Messages
	case *tg.MessagesMessages:
		raw = v.Messages
	default:
		return nil, &connector.TransientError{
			Op:  "telegram: history " + ch.Username,
			Err: fmt.Errorf("unexpected response %T", res),
		}
	}

	msgs := make([]Message, 0, len(raw))
	for _, mc := range raw {
		m, ok := mc.(*tg.Message)
		if !ok {
			continue // service messages carry no content
		}
		groupID, _ := m.GetGroupedID()
		_, hasMedia := m.GetMedia()
		msgs = append(msgs, Message{
			ID:       m.ID,
			GroupID:  groupID,
			Text:     m.Message,
			HasMedia: hasMedia,
			Date:     time.Unix(int64(m.Date), 0).UTC(),
		})
	}
	return msgs, nil
}

// Close cancels the background run loop and waits for it to exit.
func (c *MTProtoClient) Close() error {
	c.cancel()
	err := <-c.done
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// mapRPCError translates gotd's typed RPC errors into the connector
// taxonomy: flood waits carry their exact wait, entity problems become
// resolution errors, everything else is transient.
func mapRPCError(op, source string, err error) error {
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return &connector.RateLimitError{Wait: wait}
	}
	switch {
	case tgerr.Is(err, "CHANNEL_PRIVATE"):
		return &connector.ResolutionError{Source: source, Reason: "channel is private"}
	case tgerr.Is(err, "CHANNEL_INVALID"), tgerr.Is(err, "USERNAME_INVALID"), tgerr.Is(err, "USERNAME_NOT_OCCUPIED"):
		return &connector.ResolutionError{Source: source, Reason: "channel does not exist or is invalid"}
	}
	return &connector.TransientError{Op: "telegram: " + op, Err: err}
}
