package memory

import "golang.org/x/sys/unix"

func sysinfo() (total, available uint64, err error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0, err
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return uint64(info.Totalram) * unit, uint64(info.Freeram+info.Bufferram) * unit, nil
}
