// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

package backup

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/brenoschmidt/toolkit/internal/logging"
)

// Restore unpacks an archive into destRoot. Existing files are left alone
// unless force is true. Entries that would escape destRoot are rejected.
// It returns the number of files written.
func Restore(ctx context.Context, archivePath, destRoot string, force bool) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("could not open archive: %w", err)
	}
	defer func() { _ = f.Close() }()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	written := 0
	for {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("archive read failed: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		dest, err := sanitizePath(destRoot, hdr.Name)
		if err != nil {
			return written, err
		}
		if _, err := os.Stat(dest); err == nil && !force {
			logging.Debugf("restore: skipping existing %s", hdr.Name)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return written, err
		}
		out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
		if err != nil {
			return written, err
		}
		if _, err := io.Copy(out, tr); err != nil {
			_ = out.Close()
			return written, err
		}
		if err := out.Close(); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// sanitizePath resolves an archive entry name under root, rejecting absolute
// paths and traversal outside the root.
func sanitizePath(root, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry has absolute path: %s", name)
	}
	dest := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, dest)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return dest, nil
}
