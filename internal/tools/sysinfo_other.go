//go:build !linux

package tools

import "runtime"

// Only Linux exposes uptime and memory without extra dependencies; other
// platforms report zero values for them.
func readKernelFacts() kernelFacts {
	return kernelFacts{sysname: runtime.GOOS}
}

func readCPUModel() string {
	return ""
}
