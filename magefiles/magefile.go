//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the blockclip project using Mage.
//
// Usage:
//
//	mage build      Compile the blockclip binary to bin/
//	mage test       Run all tests
//	mage testRace   Run all tests with the race detector
//	mage cover      Write a coverage profile to bin/coverage.out
//	mage lint       Run golangci-lint
//	mage vet        Run go vet
//	mage clean      Remove build artifacts
//	mage install    Install blockclip to GOPATH/bin
//	mage stats      Print Go lines of code
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "blockclip"
	binaryDir  = "bin"
	cmdDir     = "./cmd/blockclip"
	modulePath = "github.com/mesh-intelligence/blockclip"
)

// Build compiles the blockclip binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
