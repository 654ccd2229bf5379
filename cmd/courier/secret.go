// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/courier-dev/courier/internal/secrets"
	courerr "github.com/courier-dev/courier/pkg/errors"
)

// serviceName is the keyring service name under which Courier stores secrets.
const serviceName = "courier"

// secretStoreFactory creates a secrets.Store. It is a package-level variable
// so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets stored in the OS keyring",
		Long: "Store, retrieve, and delete secrets under the Courier service in\n" +
			"the operating system keyring. Config values may then reference them\n" +
			"as keyring://courier/<name>.",
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretGetCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret, reading the value from stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretSet,
	}
}

func newSecretGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored secret value",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretGet,
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret by name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretDelete,
	}
}

// runSecretSet reads the value from stdin rather than the command line so it
// never lands in shell history or the process table.
func runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return courerr.Errorf(courerr.CodeCLIInputInvalid, "reading secret value from stdin: %w", err)
	}

	value := strings.TrimRight(line, "\r\n")
	if value == "" {
		return courerr.New(courerr.CodeCLIInputInvalid, "secret value must not be empty")
	}

	store := secretStoreFactory()
	if err := store.Store(serviceName, name, value); err != nil {
		return courerr.Wrapf(err, courerr.CodeSecretStoreFailure, "storing secret %q", name)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret: keyring://%s/%s\n", serviceName, name)
	return nil
}

func runSecretGet(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := secretStoreFactory()

	value, err := store.Retrieve(serviceName, name)
	if err != nil {
		if courerr.HasCode(err, courerr.CodeSecretNotFound) {
			return courerr.Errorf(courerr.CodeSecretNotFound, "secret %q not found", name)
		}
		return courerr.Wrapf(err, courerr.CodeSecretResolveFailure, "retrieving secret %q", name)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := secretStoreFactory()

	if err := store.Delete(serviceName, name); err != nil {
		if courerr.HasCode(err, courerr.CodeSecretNotFound) {
			return courerr.Errorf(courerr.CodeSecretNotFound, "secret %q not found", name)
		}
		return courerr.Wrapf(err, courerr.CodeSecretStoreFailure, "deleting secret %q", name)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret: %s\n", name)
	return nil
}
