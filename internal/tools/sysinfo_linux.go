//go:build linux

package tools

import (
	"bufio"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

func readKernelFacts() kernelFacts {
	var k kernelFacts

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		k.sysname = unix.ByteSliceToString(uts.Sysname[:])
		k.release = unix.ByteSliceToString(uts.Release[:])
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err == nil {
		unit := uint64(info.Unit)
		if unit == 0 {
			unit = 1
		}
		k.uptimeSeconds = int64(info.Uptime)
		k.totalMemory = uint64(info.Totalram) * unit
		k.freeMemory = uint64(info.Freeram) * unit
	}

	return k
}

func readCPUModel() string {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "model name", "Model", "cpu model":
			return strings.TrimSpace(value)
		}
	}
	return ""
}
