package netutil

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
)

// SelectBindAddr returns preferred when it can be listened on. Otherwise,
// with autoFallback set, it returns the first free candidate. Candidates equal
// to preferred or repeated in the list are probed once.
func SelectBindAddr(preferred string, candidates []string, autoFallback bool) (string, error) {
	tried := make([]string, 0, len(candidates)+1)
	seen := make(map[string]bool, len(candidates)+1)

	if preferred != "" {
		seen[preferred] = true
		tried = append(tried, preferred)
		ok, err := IsAddrAvailable(preferred)
		if err != nil {
			return "", err
		}
		if ok {
			return preferred, nil
		}
		if !autoFallback {
			return "", fmt.Errorf("preferred bind address in use: %s", preferred)
		}
	}

	for _, addr := range candidates {
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		tried = append(tried, addr)
		ok, err := IsAddrAvailable(addr)
		if err != nil {
			return "", err
		}
		if ok {
			if preferred != "" {
				slog.Warn("preferred bind address in use, falling back", "preferred", preferred, "addr", addr)
			}
			return addr, nil
		}
	}

	if len(tried) == 0 {
		return "", fmt.Errorf("no API bind addresses configured")
	}
	return "", fmt.Errorf("no available API bind addresses (tried %s)", strings.Join(tried, ", "))
}

// IsAddrAvailable reports whether addr can be listened on right now.
func IsAddrAvailable(addr string) (bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, nil
	}
	if err := ln.Close(); err != nil {
		return false, err
	}
	return true, nil
}
