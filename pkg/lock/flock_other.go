//go:build aix || (!unix && !windows)

package lock

import (
	"os"

	sharelockErrors "github.com/bashhack/sharelock/internal/errors"
)

func lockBlocking(*os.File) error {
	return sharelockErrors.WithStack(ErrUnsupportedPlatform)
}

func tryLock(*os.File) (bool, error) {
	return false, sharelockErrors.WithStack(ErrUnsupportedPlatform)
}

func unlock(*os.File) error {
	return sharelockErrors.WithStack(ErrUnsupportedPlatform)
}
