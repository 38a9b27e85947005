// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/passgate/passgate/internal/auth"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print an argon2id hash for admin.password_hash",
		Long: `Hash a password with the configured argon2id work factor and print
the encoded result. The password is read from the first line of stdin
unless --password is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("password") {
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			return runHashPassword(cmd, cfg.Hasher.Params(), password)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password to hash (visible in process listings; prefer stdin)")

	return cmd
}

func runHashPassword(cmd *cobra.Command, params auth.Params, password string) error {
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hasher, err := auth.NewArgon2idHasherWithParams(params)
	if err != nil {
		return oops.Wrapf(err, "invalid hasher parameters")
	}
	encoded, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	cmd.Println(encoded)
	return nil
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", oops.Code("INPUT_READ_FAILED").With("operation", "read password from stdin").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
