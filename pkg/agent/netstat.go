package agent

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// readInterfaceBytes sums rx+tx byte counters for iface from
// /proc/net/dev. Best effort: missing interface reports zero.
func readInterfaceBytes(iface string) (uint64, error) {
	f, err := os.Open("/proc/net/dev")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		name, rest, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(name) != iface {
			continue
		}
		fields := strings.Fields(rest)
		// Field 0 is rx bytes, field 8 is tx bytes.
		if len(fields) < 9 {
			return 0, nil
		}
		rx, _ := strconv.ParseUint(fields[0], 10, 64)
		tx, _ := strconv.ParseUint(fields[8], 10, 64)
		return rx + tx, nil
	}
	return 0, scanner.Err()
}

// countEstablished counts established TCP connections from
// /proc/net/tcp and /proc/net/tcp6. Best effort.
func countEstablished() int {
	total := 0
	for _, path := range []string{"/proc/net/tcp", "/proc/net/tcp6"} {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		scanner.Scan() // header
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			// Field 3 is the connection state; 01 = ESTABLISHED.
			if len(fields) > 3 && fields[3] == "01" {
				total++
			}
		}
		f.Close()
	}
	return total
}
