// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passgate Contributors

// Command gen-schema writes the config file JSON Schema for editors and CI.
//
// With --check it writes nothing and fails when the file on disk is stale.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/passgate/passgate/internal/config"
)

const defaultOutput = "schemas/config.schema.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("gen-schema", pflag.ContinueOnError)
	flags.SetOutput(stdout)
	outPath := flags.StringP("output", "o", defaultOutput, "schema file to write")
	check := flags.Bool("check", false, "fail if the schema file is out of date instead of writing it")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return oops.Code("INVALID_ARGS").Errorf("unexpected arguments: %v", flags.Args())
	}

	schema, err := config.GenerateSchema()
	if err != nil {
		return oops.Wrapf(err, "generating schema")
	}
	// An empty mapping exercises the compiler and every default.
	if err := config.ValidateFile([]byte("{}")); err != nil {
		return oops.Wrapf(err, "generated schema rejects an empty config")
	}
	schema = append(schema, '\n')

	if *check {
		current, err := os.ReadFile(*outPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return oops.With("path", *outPath).Wrapf(err, "reading schema")
		}
		if !bytes.Equal(current, schema) {
			return oops.Code("SCHEMA_STALE").
				With("path", *outPath).
				Errorf("%s is out of date; run gen-schema", *outPath)
		}
		fmt.Fprintf(stdout, "%s is up to date\n", *outPath)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o750); err != nil {
		return oops.With("path", *outPath).Wrapf(err, "creating directory")
	}
	if err := os.WriteFile(*outPath, schema, 0o600); err != nil {
		return oops.With("path", *outPath).Wrapf(err, "writing schema")
	}
	fmt.Fprintf(stdout, "Generated %s\n", *outPath)
	return nil
}
