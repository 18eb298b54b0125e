package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"intake/internal/constants"
)

type KeyFunc func(r *http.Request) string

// ForwardedKey trusts the first X-Forwarded-For hop, then X-Real-IP. Clients
// that resolve to neither share the "unknown" budget.
func ForwardedKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return constants.UnknownClientKey
}

func RemoteAddrKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return constants.UnknownClientKey
	}
	return host
}

func KeyFuncFor(source string) KeyFunc {
	if source == constants.KeySourceRemoteAddr {
		return RemoteAddrKey
	}
	return ForwardedKey
}
