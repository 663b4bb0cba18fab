//go:build !linux

package memory

import "errors"

func sysinfo() (total, available uint64, err error) {
	return 0, 0, errors.New("sysinfo not supported on this platform")
}
