//go:build linux || darwin || freebsd || netbsd || openbsd

package arch

import "golang.org/x/sys/unix"

func machine() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", err
	}
	return unix.ByteSliceToString(uts.Machine[:]), nil
}
