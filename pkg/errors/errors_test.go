// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	courerr "github.com/courier-dev/courier/pkg/errors"
)

// TestClassification verifies errors are classified by the reason suffix of
// their code.
func TestClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", courerr.New(courerr.CodeStoreConversationNotFound, "no such conversation"), courerr.IsNotFound},
		{"secret not found", courerr.New(courerr.CodeSecretNotFound, "no such secret"), courerr.IsNotFound},
		{"invalid input", courerr.New(courerr.CodeStoreInvalidInput, "bad id"), courerr.IsInvalidInput},
		{"invalid config value", courerr.New(courerr.CodeConfigValidateInvalidValue, "bad value"), courerr.IsInvalidInput},
		{"upstream", courerr.New(courerr.CodeProviderUpstreamFailure, "overloaded"), courerr.IsUpstreamFailure},
		{"transport", courerr.New(courerr.CodeChannelSendFailure, "send failed"), courerr.IsTransport},
		{"adapter", courerr.New(courerr.CodeProviderNotFound, "missing"), courerr.IsAdapter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}
}

// TestClassification_NotMatching verifies classifiers reject other categories.
func TestClassification_NotMatching(t *testing.T) {
	err := courerr.New(courerr.CodeChannelSendFailure, "send failed")

	assert.False(t, courerr.IsNotFound(err))
	assert.False(t, courerr.IsInvalidInput(err))
	assert.False(t, courerr.IsAdapter(err))
	assert.True(t, courerr.IsTransport(err))

	assert.False(t, courerr.IsTransport(stderrors.New("plain")))
	assert.False(t, courerr.IsTransport(nil))
}

// TestCodeOf verifies code extraction across construction and wrapping.
func TestCodeOf(t *testing.T) {
	assert.Equal(t, courerr.Code(""), courerr.CodeOf(nil))
	assert.Equal(t, courerr.Code(""), courerr.CodeOf(stderrors.New("plain")))

	err := courerr.Errorf(courerr.CodeChannelPollFailure, "poll %d failed", 3)
	assert.Equal(t, courerr.CodeChannelPollFailure, courerr.CodeOf(err))
	assert.True(t, courerr.HasCode(err, courerr.CodeChannelPollFailure))
	assert.False(t, courerr.HasCode(err, courerr.CodeChannelSendFailure))

	wrapped := courerr.Wrap(fmt.Errorf("dial tcp: refused"), courerr.CodeChannelSendFailure, "sending reply")
	assert.Equal(t, courerr.CodeChannelSendFailure, courerr.CodeOf(wrapped))
	assert.Contains(t, wrapped.Error(), "sending reply")
	assert.Contains(t, wrapped.Error(), "refused")
}

// TestWrapNil verifies wrapping nil stays nil.
func TestWrapNil(t *testing.T) {
	assert.NoError(t, courerr.Wrap(nil, courerr.CodeChannelSendFailure, "ignored"))
	assert.NoError(t, courerr.Wrapf(nil, courerr.CodeChannelSendFailure, "ignored"))
	assert.NoError(t, courerr.With(nil, courerr.Field("k", "v")))
}

// TestFields verifies structured fields survive construction and wrapping.
func TestFields(t *testing.T) {
	err := courerr.New(courerr.CodeChannelEditFailure, "edit failed",
		courerr.FieldConversationID("chat-1"),
		courerr.FieldMessageID("m7"),
	)

	fields := courerr.FieldsOf(err)
	require.NotNil(t, fields)
	assert.Equal(t, "chat-1", fields["conversation_id"])
	assert.Equal(t, "m7", fields["message_id"])

	err = courerr.With(err, courerr.FieldProvider("openai"))
	fields = courerr.FieldsOf(err)
	assert.Equal(t, "openai", fields["provider"])
	assert.Equal(t, "chat-1", fields["conversation_id"])

	assert.Nil(t, courerr.FieldsOf(stderrors.New("plain")))
}

// TestJoin verifies joined errors keep their messages.
func TestJoin(t *testing.T) {
	err := courerr.Join(
		courerr.New(courerr.CodeChannelSendFailure, "first"),
		courerr.New(courerr.CodeChannelEditFailure, "second"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}
