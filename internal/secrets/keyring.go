// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"

	courerr "github.com/courier-dev/courier/pkg/errors"
)

// KeyringStore implements Store using the OS keyring via zalando/go-keyring.
type KeyringStore struct{}

// Compile-time interface check.
var _ Store = (*KeyringStore)(nil)

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Store(service, key, value string) error {
	if service == "" {
		return courerr.New(courerr.CodeSecretInvalidInput, "secret store: service must not be empty")
	}
	if key == "" {
		return courerr.New(courerr.CodeSecretInvalidInput, "secret store: key must not be empty")
	}

	if err := keyring.Set(service, key, value); err != nil {
		return courerr.Wrapf(err, courerr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}
	return nil
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if service == "" {
		return "", courerr.New(courerr.CodeSecretInvalidInput, "secret retrieve: service must not be empty")
	}
	if key == "" {
		return "", courerr.New(courerr.CodeSecretInvalidInput, "secret retrieve: key must not be empty")
	}

	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", courerr.Errorf(courerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", courerr.Wrapf(err, courerr.CodeSecretResolveFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if service == "" {
		return courerr.New(courerr.CodeSecretInvalidInput, "secret delete: service must not be empty")
	}
	if key == "" {
		return courerr.New(courerr.CodeSecretInvalidInput, "secret delete: key must not be empty")
	}

	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return courerr.Errorf(courerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return courerr.Wrapf(err, courerr.CodeSecretStoreFailure, "deleting secret %s/%s", service, key)
	}
	return nil
}
