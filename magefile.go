//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target - build the binary
var Default = Build

const binary = "covergate"

// Build builds the covergate binary
func Build() error {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	ldflags := fmt.Sprintf("-s -w -X github.com/felixgeelhaar/covergate/internal/cli.Version=%s", version)
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", binary, ".")
}

// Test runs unit and property tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "-tags", "property", "./...")
}

// Property runs only the gopter property tests
func Property() error {
	return sh.RunV("go", "test", "-tags", "property", "./internal/domain/...")
}

// Lint runs go vet and, when installed, golangci-lint
func Lint() error {
	if err := sh.RunV("go", "vet", "-tags", "property", "./..."); err != nil {
		return err
	}
	if err := sh.RunV("golangci-lint", "run", "./..."); err != nil {
		if sh.CmdRan(err) {
			return err
		}
		fmt.Fprintln(os.Stderr, "golangci-lint not found, skipping")
	}
	return nil
}

// QA runs lint and the full test suite
func QA() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binary)
}
