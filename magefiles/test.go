//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestRace runs all tests with the race detector. The transfer
// orchestrator and the pointer state are shared across goroutines.
func TestRace() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover writes a coverage profile to bin/coverage.out and prints the
// per-function summary.
func Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile="+profile, "-coverpkg="+modulePath+"/...", "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+profile)
}
