// Package exporter writes the content store out as a YAML fixture that
// "smartbar import" can replay.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jpl-au/smartbar/internal/content"
)

// Source is the part of the service an export reads from.
type Source interface {
	Export(ctx context.Context) (*content.Fixture, error)
}

// Options configures an export operation.
type Options struct {
	Force bool // Overwrite an existing file
}

// Result contains the outcome of an export operation.
type Result struct {
	Entities int    `json:"entities"`
	Accounts int    `json:"accounts"`
	Path     string `json:"path,omitempty"`
}

// Run exports the store. An empty dst or "-" writes the YAML to w;
// otherwise it is written to the file dst, which must not exist unless
// opts.Force is set.
func Run(ctx context.Context, w io.Writer, src Source, dst string, opts Options) (Result, error) {
	f, err := src.Export(ctx)
	if err != nil {
		return Result{}, err
	}
	data, err := Marshal(f)
	if err != nil {
		return Result{}, err
	}
	res := Result{Entities: len(f.Entities), Accounts: len(f.Accounts)}

	if dst == "" || dst == "-" {
		_, err := w.Write(data)
		return res, err
	}

	dir, name := filepath.Dir(dst), filepath.Base(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return res, fmt.Errorf("creating directory: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return res, fmt.Errorf("opening destination: %w", err)
	}
	defer root.Close()

	if err := writeFileInRoot(root, name, data, opts.Force); err != nil {
		return res, err
	}
	res.Path = dst
	return res, nil
}

// Marshal encodes a fixture with two-space indentation.
func Marshal(f *content.Fixture) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode fixture: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// writeFileInRoot writes data to a file within an os.Root so name cannot
// escape the destination directory.
func writeFileInRoot(root *os.Root, name string, data []byte, force bool) error {
	if !force {
		if _, err := root.Stat(name); err == nil {
			return fmt.Errorf("file exists: %s (use --force to overwrite)", name)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	fh, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", name, err)
	}
	defer fh.Close()

	_, err = fh.Write(data)
	return err
}
