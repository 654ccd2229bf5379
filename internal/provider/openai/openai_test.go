// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package openai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courier-dev/courier/internal/provider"
	"github.com/courier-dev/courier/internal/provider/openai"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// Compile-time interface satisfaction check.
var _ provider.Completer = (*openai.Provider)(nil)

func TestOpenAIProvider_Name(t *testing.T) {
	p := mustNewProvider(t)
	assert.Equal(t, "openai", p.Name())
}

func TestOpenAIProvider_MissingAPIKey(t *testing.T) {
	_, err := openai.New(openai.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.True(t, courerr.IsInvalidInput(err))
	assert.True(t, courerr.HasCode(err, courerr.CodeProviderRequestInvalid))
}

func TestOpenAIProvider_Available(t *testing.T) {
	p := mustNewProvider(t)
	assert.True(t, p.Available(context.Background()))
}

func TestOpenAIProvider_Close(t *testing.T) {
	p := mustNewProvider(t)
	assert.NoError(t, p.Close())
}

// mustNewProvider creates a provider with a dummy API key for unit tests.
func mustNewProvider(t *testing.T) *openai.Provider {
	t.Helper()
	p, err := openai.New(openai.Config{APIKey: "test-key-not-real"})
	require.NoError(t, err)
	return p
}
