// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

// Package telegram is a minimal Telegram Bot API binding: long-poll update
// delivery plus the three outbound calls the relay needs (send, reply-send,
// edit-in-place).
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	courerr "github.com/courier-dev/courier/pkg/errors"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Config holds Telegram client configuration.
type Config struct {
	Token      string
	BaseURL    string       // optional, useful for testing against a mock server
	HTTPClient *http.Client // optional
}

// Client calls the Telegram Bot API over HTTP.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Client. Returns an error if the token is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, courerr.New(courerr.CodeChannelTokenInvalid, "telegram: missing bot token")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Long polling holds the getUpdates request open server-side, so
		// the client timeout must exceed the poll timeout.
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}

	return &Client{
		token:   cfg.Token,
		baseURL: baseURL,
		http:    httpClient,
	}, nil
}

// call invokes one Bot API method and decodes its result envelope into out
// (out may be nil when the result is irrelevant). Transport and API-level
// failures carry failCode; undecodable responses carry
// CodeChannelResponseInvalid.
func (c *Client) call(ctx context.Context, method string, failCode courerr.Code, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return courerr.Wrapf(err, failCode, "telegram: encoding %s request", method)
	}

	url := c.baseURL + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return courerr.Wrapf(err, failCode, "telegram: building %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return courerr.Wrapf(err, failCode, "telegram: %s request", method)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return courerr.Wrapf(err, courerr.CodeChannelResponseInvalid, "telegram: reading %s response", method)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return courerr.Wrapf(err, courerr.CodeChannelResponseInvalid, "telegram: decoding %s response", method)
	}

	if !envelope.OK {
		return courerr.Errorf(failCode, "telegram: %s failed (code %d): %s",
			method, envelope.ErrorCode, envelope.Description)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return courerr.Wrapf(err, courerr.CodeChannelResponseInvalid, "telegram: decoding %s result", method)
		}
	}

	return nil
}

// GetMe returns the bot's own account, verifying the token in the process.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, "getMe", courerr.CodeChannelTokenCheckFailed, struct{}{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// SendMessage sends text to a chat. A non-zero replyTo addresses the new
// message as a reply to that message id.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, replyTo int64) (*Message, error) {
	var msg Message
	req := sendMessageRequest{ChatID: chatID, Text: text, ReplyToMessageID: replyTo}
	if err := c.call(ctx, "sendMessage", courerr.CodeChannelSendFailure, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText replaces the text of a previously sent message in place.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	req := editMessageTextRequest{ChatID: chatID, MessageID: messageID, Text: text}
	return c.call(ctx, "editMessageText", courerr.CodeChannelEditFailure, req, nil)
}

// GetUpdates long-polls for new updates starting at offset. timeout is the
// server-side hold in seconds; zero makes the call return immediately.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	var updates []Update
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        timeout,
		AllowedUpdates: []string{"message"},
	}
	if err := c.call(ctx, "getUpdates", courerr.CodeChannelPollFailure, req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
