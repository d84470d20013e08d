//go:build mage

// Package main contains Mage build targets for tapfetch developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// projectDirs lists the working directories a fetch run writes into.
var projectDirs = []string{
	"fits",
	"history",
}

// Init creates the working directories for downloads and the run ledger.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "tapfetch"
	cmdPkg  = "./cmd/tapfetch"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	cmd := exec.Command("go", "build", "-o", out, cmdPkg)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests. The ledger needs cgo for go-sqlite3.
func Test() error {
	cmd := exec.Command("go", "test", "./...")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=1")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go test: %w", err)
	}
	return nil
}

// sourceDirs are the trees Stats counts.
var sourceDirs = []string{"cmd", "internal", "pkg"}

// Stats prints non-blank Go lines per source tree and the number of files
// downloaded into fits/.
func Stats() error {
	var prodTotal, testTotal int
	for _, dir := range sourceDirs {
		prod, test, err := countGoLines(dir)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %6d prod %6d test\n", dir, prod, test)
		prodTotal += prod
		testTotal += test
	}
	fmt.Printf("%-10s %6d prod %6d test\n", "total", prodTotal, testTotal)

	entries, err := os.ReadDir(projectDirs[0])
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", projectDirs[0], err)
	}
	files := 0
	for _, e := range entries {
		if !e.IsDir() {
			files++
		}
	}
	fmt.Printf("Downloaded files in %s: %d\n", projectDirs[0], files)
	return nil
}

// countGoLines returns the non-blank line counts of production and test Go
// files under root.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(bytes.TrimSpace(line)) > 0 {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}
