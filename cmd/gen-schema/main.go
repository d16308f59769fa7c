// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Command gen-schema writes the JSON Schema for description content files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aqidash/aqidash/internal/content"
)

func main() {
	outPath := flag.String("out", filepath.Join("schemas", "content.schema.json"), "output file")
	flag.Parse()

	if err := generate(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %s\n", *outPath)
}

func generate(outPath string) error {
	schema, err := content.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generating schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(outPath, schema, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
