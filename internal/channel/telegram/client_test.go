// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package telegram_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courier-dev/courier/internal/channel/telegram"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// apiStub is an httptest server impersonating the Bot API. Each method name
// maps to a handler that receives the decoded request body and returns the
// envelope's result value.
type apiStub struct {
	t       *testing.T
	methods map[string]func(body map[string]any) (any, *apiError)
	calls   []string
}

type apiError struct {
	code        int
	description string
}

func (s *apiStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path is /bot<token>/<method>.
		idx := strings.LastIndex(r.URL.Path, "/")
		method := r.URL.Path[idx+1:]
		s.calls = append(s.calls, method)

		var body map[string]any
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&body))

		fn, ok := s.methods[method]
		if !ok {
			s.t.Errorf("unexpected method %q", method)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		result, apiErr := fn(body)
		if apiErr != nil {
			require.NoError(s.t, json.NewEncoder(w).Encode(map[string]any{
				"ok":          false,
				"error_code":  apiErr.code,
				"description": apiErr.description,
			}))
			return
		}
		require.NoError(s.t, json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": result,
		}))
	})
}

func newStubClient(t *testing.T, stub *apiStub) *telegram.Client {
	t.Helper()
	stub.t = t

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	client, err := telegram.NewClient(telegram.Config{
		Token:      "test-token",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return client
}

// TestNewClient_RequiresToken verifies an empty token is rejected up front.
func TestNewClient_RequiresToken(t *testing.T) {
	_, err := telegram.NewClient(telegram.Config{})
	require.Error(t, err)
	assert.True(t, courerr.HasCode(err, courerr.CodeChannelTokenInvalid))
}

// TestClient_GetMe verifies token validation via getMe.
func TestClient_GetMe(t *testing.T) {
	stub := &apiStub{methods: map[string]func(map[string]any) (any, *apiError){
		"getMe": func(map[string]any) (any, *apiError) {
			return telegram.User{ID: 42, IsBot: true, Username: "courier_bot"}, nil
		},
	}}
	client := newStubClient(t, stub)

	me, err := client.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), me.ID)
	assert.Equal(t, "courier_bot", me.Username)
	assert.True(t, me.IsBot)
}

// TestClient_GetMeUnauthorized verifies a rejected token surfaces the API
// description with the token-check code.
func TestClient_GetMeUnauthorized(t *testing.T) {
	stub := &apiStub{methods: map[string]func(map[string]any) (any, *apiError){
		"getMe": func(map[string]any) (any, *apiError) {
			return nil, &apiError{code: 401, description: "Unauthorized"}
		},
	}}
	client := newStubClient(t, stub)

	_, err := client.GetMe(context.Background())
	require.Error(t, err)
	assert.True(t, courerr.HasCode(err, courerr.CodeChannelTokenCheckFailed))
	assert.Contains(t, err.Error(), "Unauthorized")
}

// TestClient_SendMessage verifies the request payload and result decoding,
// with and without a reply target.
func TestClient_SendMessage(t *testing.T) {
	var got map[string]any
	stub := &apiStub{methods: map[string]func(map[string]any) (any, *apiError){
		"sendMessage": func(body map[string]any) (any, *apiError) {
			got = body
			return telegram.Message{MessageID: 7, Chat: telegram.Chat{ID: 100}, Text: "hello"}, nil
		},
	}}
	client := newStubClient(t, stub)

	msg, err := client.SendMessage(context.Background(), 100, "hello", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.MessageID)
	assert.Equal(t, float64(100), got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, float64(5), got["reply_to_message_id"])

	// A zero replyTo must be omitted entirely.
	_, err = client.SendMessage(context.Background(), 100, "hello", 0)
	require.NoError(t, err)
	assert.NotContains(t, got, "reply_to_message_id")
}

// TestClient_EditMessageText verifies the edit payload and error mapping.
func TestClient_EditMessageText(t *testing.T) {
	var got map[string]any
	fail := false
	stub := &apiStub{methods: map[string]func(map[string]any) (any, *apiError){
		"editMessageText": func(body map[string]any) (any, *apiError) {
			got = body
			if fail {
				return nil, &apiError{code: 400, description: "message to edit not found"}
			}
			return true, nil
		},
	}}
	client := newStubClient(t, stub)

	require.NoError(t, client.EditMessageText(context.Background(), 100, 7, "updated"))
	assert.Equal(t, float64(100), got["chat_id"])
	assert.Equal(t, float64(7), got["message_id"])
	assert.Equal(t, "updated", got["text"])

	fail = true
	err := client.EditMessageText(context.Background(), 100, 7, "updated")
	require.Error(t, err)
	assert.True(t, courerr.HasCode(err, courerr.CodeChannelEditFailure))
}

// TestClient_GetUpdates verifies long-poll parameters and update decoding.
func TestClient_GetUpdates(t *testing.T) {
	var got map[string]any
	stub := &apiStub{methods: map[string]func(map[string]any) (any, *apiError){
		"getUpdates": func(body map[string]any) (any, *apiError) {
			got = body
			return []telegram.Update{
				{UpdateID: 11, Message: &telegram.Message{MessageID: 1, Chat: telegram.Chat{ID: 100}, Text: "/help"}},
				{UpdateID: 12},
			}, nil
		},
	}}
	client := newStubClient(t, stub)

	updates, err := client.GetUpdates(context.Background(), 11, 30)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(11), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "/help", updates[0].Message.Text)
	assert.Nil(t, updates[1].Message)

	assert.Equal(t, float64(11), got["offset"])
	assert.Equal(t, float64(30), got["timeout"])
	assert.Equal(t, []any{"message"}, got["allowed_updates"])
}

// TestClient_GetUpdatesFailure verifies poll errors carry the poll code.
func TestClient_GetUpdatesFailure(t *testing.T) {
	stub := &apiStub{methods: map[string]func(map[string]any) (any, *apiError){
		"getUpdates": func(map[string]any) (any, *apiError) {
			return nil, &apiError{code: 409, description: "terminated by other getUpdates request"}
		},
	}}
	client := newStubClient(t, stub)

	_, err := client.GetUpdates(context.Background(), 0, 30)
	require.Error(t, err)
	assert.True(t, courerr.HasCode(err, courerr.CodeChannelPollFailure))
}

// TestClient_MalformedResponse verifies a non-JSON body maps to the
// response-invalid code.
func TestClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	t.Cleanup(srv.Close)

	client, err := telegram.NewClient(telegram.Config{Token: "test-token", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetMe(context.Background())
	require.Error(t, err)
	assert.True(t, courerr.HasCode(err, courerr.CodeChannelResponseInvalid))
}
