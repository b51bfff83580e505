package server

import (
	"net"
	"net/http"
	"net/url"
	"path"
)

// originChecker builds the upgrader's CheckOrigin. Requests without an
// Origin header and loopback origins are always accepted; anything else
// must match one of the allowed glob patterns.
func originChecker(allowed []string, warn func(msg string, args ...any)) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		for _, pattern := range allowed {
			if ok, err := path.Match(pattern, origin); err == nil && ok {
				return true
			}
		}

		u, err := url.Parse(origin)
		if err != nil {
			warn("rejected WebSocket connection: invalid origin URL", "origin", origin)
			return false
		}
		host := u.Hostname()
		if host == "localhost" {
			return true
		}
		if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
			return true
		}

		warn("rejected WebSocket connection", "origin", origin)
		return false
	}
}
