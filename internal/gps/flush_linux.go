//go:build linux

package gps

import (
	"io"

	"golang.org/x/sys/unix"
)

func flushInput(port io.ReadWriteCloser) error {
	f, ok := port.(interface{ Fd() uintptr })
	if !ok {
		return nil
	}
	return unix.IoctlSetInt(int(f.Fd()), unix.TCFLSH, unix.TCIOFLUSH)
}
