// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// SupportedExtensions are the extensions accepted without --force. Each one
// is claimed by a bundled format.
var SupportedExtensions = []string{"wav", "mp3", "flac", "ogg", "oga", "aif", "aiff"}

var (
	ErrFileNotFound         = errors.New("file not found")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)

// validateInput checks that path is an existing file with a supported
// extension. force skips the extension check.
func validateInput(fs afero.Fs, path string, force bool) error {
	info, err := fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	if force {
		return nil
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !slices.Contains(SupportedExtensions, ext) {
		return fmt.Errorf("%w: %q (use --force to try anyway)", ErrUnsupportedExtension, ext)
	}
	return nil
}
