//go:build windows

package ops

import (
	"os"

	"github.com/hpungsan/spellbook/internal/errors"
)

// Windows has no O_NOFOLLOW. Creating symlinks there needs privileges, and
// ValidatePath has already refused symlinked paths.

func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

func openFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.NewFileNotFound(path)
	}
	return f, err
}
