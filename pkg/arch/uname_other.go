//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package arch

import "errors"

func machine() (string, error) {
	return "", errors.New("uname not supported on this platform")
}
