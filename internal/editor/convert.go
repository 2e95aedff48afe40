package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fitfaker/internal/fit"
)

// DefaultOutputPath derives the output filename for an input file by
// appending the modification suffix before the extension.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + "_modified" + ext
}

// ConvertFile decodes path, rewrites it, and writes the result to output
// (derived from path when empty). In dry-run mode the decode and rewrite
// still run, validating the input, but nothing is persisted.
//
// On any failure no output file becomes visible: the stream is encoded
// fully in memory and lands on disk via a temp file renamed into place.
func (e *Editor) ConvertFile(path, output string, dryRun bool) (string, error) {
	if output == "" {
		output = DefaultOutputPath(path)
	}

	e.logger.Info("processing", "path", path)
	src, err := fit.NewDecoder(e.logger).DecodeFile(path)
	if err != nil {
		return "", err
	}

	rewritten, err := e.Rewrite(src)
	if err != nil {
		return "", err
	}
	data, err := e.Encode(rewritten)
	if err != nil {
		return "", err
	}

	if dryRun {
		e.logger.Info("dry run, not writing output", "would_write", output)
		return output, nil
	}

	if err := writeAtomic(output, data); err != nil {
		return "", fmt.Errorf("write %s: %w", output, err)
	}
	e.logger.Info("saved rewritten file", "path", output)
	return output, nil
}

// ConvertStream rewrites an already-decoded stream and writes it to
// output, which must be non-empty.
func (e *Editor) ConvertStream(src *fit.File, output string, dryRun bool) error {
	if output == "" {
		return fmt.Errorf("output path required for in-memory streams")
	}
	rewritten, err := e.Rewrite(src)
	if err != nil {
		return err
	}
	data, err := e.Encode(rewritten)
	if err != nil {
		return err
	}
	if dryRun {
		return nil
	}
	if err := writeAtomic(output, data); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}

// writeAtomic lands data at path without ever exposing a partial file:
// sibling temp file first, rename second.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()[:8]))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
