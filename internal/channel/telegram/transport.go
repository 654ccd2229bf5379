// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package telegram

import (
	"context"
	"strconv"

	"github.com/courier-dev/courier/internal/relay"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// Transport adapts Client to the relay's transport interface, mapping the
// relay's opaque string ids onto Telegram's numeric chat and message ids.
type Transport struct {
	client *Client
}

// Compile-time interface check.
var _ relay.Transport = (*Transport)(nil)

// NewTransport wraps a Client for use by the relay.
func NewTransport(client *Client) *Transport {
	return &Transport{client: client}
}

func (t *Transport) Send(ctx context.Context, conversationID, text string) (string, error) {
	chatID, err := parseID(conversationID)
	if err != nil {
		return "", err
	}

	msg, err := t.client.SendMessage(ctx, chatID, text, 0)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(msg.MessageID, 10), nil
}

func (t *Transport) Reply(ctx context.Context, conversationID, replyTo, text string) (string, error) {
	chatID, err := parseID(conversationID)
	if err != nil {
		return "", err
	}
	replyID, err := parseID(replyTo)
	if err != nil {
		return "", err
	}

	msg, err := t.client.SendMessage(ctx, chatID, text, replyID)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(msg.MessageID, 10), nil
}

func (t *Transport) Edit(ctx context.Context, conversationID, messageID, text string) error {
	chatID, err := parseID(conversationID)
	if err != nil {
		return err
	}
	msgID, err := parseID(messageID)
	if err != nil {
		return err
	}

	return t.client.EditMessageText(ctx, chatID, msgID, text)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, courerr.Wrapf(err, courerr.CodeChannelSendFailure, "telegram: invalid id %q", s)
	}
	return id, nil
}
