// Package openscad turns .scad sources into STL meshes by shelling out to
// the openscad binary, and lists the files a source pulls in so they can be
// watched together.
package openscad

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNotInstalled is returned when the openscad binary is not on PATH
var ErrNotInstalled = errors.New("openscad not found in PATH")

var importPattern = regexp.MustCompile(`^\s*(?:use|include)\s*<([^>]+)>`)

// IsSource reports whether a path names an OpenSCAD source file
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".scad")
}

// Compiler renders OpenSCAD sources relative to a working directory
type Compiler struct {
	Binary  string
	WorkDir string
	Logger  *slog.Logger
}

// NewCompiler returns a compiler using the openscad binary found on PATH
func NewCompiler(workDir string, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{Binary: "openscad", WorkDir: workDir, Logger: logger}
}

func (c *Compiler) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.WorkDir, path)
}

// Compile renders source into an STL file at output
func (c *Compiler) Compile(ctx context.Context, source, output string) error {
	binary, err := exec.LookPath(c.Binary)
	if err != nil {
		return fmt.Errorf("%w: install it from https://openscad.org/", ErrNotInstalled)
	}

	cmd := exec.CommandContext(ctx, binary, "-o", output, c.abs(source))
	cmd.Dir = c.WorkDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.Logger.Debug("running openscad", "source", source, "output", output)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return fmt.Errorf("failed to render %s: %w: %s", source, err, msg)
	}
	return nil
}

// CompileTemp renders source into a temporary STL file and returns its path.
// The caller removes the file.
func (c *Compiler) CompileTemp(ctx context.Context, source string) (string, error) {
	f, err := os.CreateTemp("", "goslice-*.stl")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := c.Compile(ctx, source, path); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Dependencies returns source followed by every file it reaches through
// use or include statements, each listed once.
func (c *Compiler) Dependencies(source string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	var visit func(path string) error
	visit = func(path string) error {
		if seen[path] {
			return nil
		}
		seen[path] = true
		files = append(files, path)

		imports, err := c.imports(path)
		if err != nil {
			return err
		}
		for _, dep := range imports {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(filepath.Clean(c.abs(source))); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Compiler) imports(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	dir := filepath.Dir(path)
	var deps []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		if m := importPattern.FindStringSubmatch(line); m != nil {
			deps = append(deps, c.resolve(m[1], dir))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return deps, nil
}

// resolve looks next to the including file first, then in the working directory
func (c *Compiler) resolve(dep, dir string) string {
	local := filepath.Join(dir, dep)
	if strings.HasPrefix(dep, "./") || strings.HasPrefix(dep, "../") {
		return filepath.Clean(local)
	}
	if _, err := os.Stat(local); err == nil {
		return filepath.Clean(local)
	}
	return filepath.Clean(filepath.Join(c.WorkDir, dep))
}
