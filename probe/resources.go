package probe

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// diskFreeKB reports free space for the filesystem holding dir, in KiB.
// Returns 0 when the query fails.
func diskFreeKB(ctx context.Context, dir string) uint64 {
	out, err := exec.CommandContext(ctx, "df", "-Pk", dir).Output()
	if err != nil {
		return 0
	}
	return parseDF(string(out))
}

// parseDF extracts the "Available" column from POSIX df output.
func parseDF(out string) uint64 {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return 0
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 4 {
		return 0
	}
	kb, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return 0
	}
	return kb
}

// memoryKB reports total physical memory in KiB, via /proc/meminfo on
// Linux or sysctl on Darwin. Returns 0 when neither works.
func memoryKB(ctx context.Context) uint64 {
	if data, err := os.ReadFile("/proc/meminfo"); err == nil {
		if kb := parseMemInfo(string(data)); kb > 0 {
			return kb
		}
	}
	out, err := exec.CommandContext(ctx, "sysctl", "-n", "hw.memsize").Output()
	if err != nil {
		return 0
	}
	bytes, err := strconv.ParseUint(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0
	}
	return bytes / 1024
}

func parseMemInfo(data string) uint64 {
	for _, line := range strings.Split(data, "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb
	}
	return 0
}
