package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"nd/internal/bytestream"
)

// siblingTempPath names the scratch file ProcessInPlace writes a
// rewritten file to before renaming it over the original, a dotfile
// next to path so a directory listing doesn't show it as a sibling
// input on a later run.
func siblingTempPath(path string) string {
	dir, file := filepath.Split(path)
	return filepath.Join(dir, "."+file+".nd-tmp")
}

// ProcessInPlace rewrites the file at path: build constructs the
// pipeline Result from an open read source, the result drains to a
// temporary sibling, and only on full success is that sibling renamed
// over the original. Any error leaves both the original file and the
// temporary sibling untouched, so a failed run never loses data and the
// partial output is left on disk to aid recovery.
func ProcessInPlace(fs afero.Fs, path string, build func(src bytestream.ByteStream) (Result, error)) error {
	raw, f, err := bytestream.OpenRaw(fs, path, 1)
	if err != nil {
		return fmt.Errorf("pipeline: open %q: %w", path, err)
	}
	defer f.Close()

	res, err := build(bytestream.NewEofStream(raw))
	if err != nil {
		return fmt.Errorf("pipeline: assemble %q: %w", path, err)
	}

	tmpPath := siblingTempPath(path)
	out, err := fs.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("pipeline: create %q: %w", tmpPath, err)
	}

	if err := Drain(out, res); err != nil {
		out.Close()
		return fmt.Errorf("pipeline: rewrite %q: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("pipeline: close %q: %w", tmpPath, err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("pipeline: rename %q to %q: %w", tmpPath, path, err)
	}
	return nil
}
