// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

// Package secrets resolves credential references in configuration. Values
// may be given inline, or as keyring://service/key URIs backed by the OS
// keyring (Keychain on macOS, secret-service on Linux, Credential Manager
// on Windows).
package secrets

// Store abstracts secret retrieval and storage.
type Store interface {
	Store(service, key, value string) error
	Retrieve(service, key string) (string, error)
	Delete(service, key string) error
}
