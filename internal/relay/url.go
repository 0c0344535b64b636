package relay

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a relay endpoint address: the websocket
// scheme is defaulted when absent (http/https map to their websocket
// equivalents), the scheme and host are lowercased, and a bare trailing
// slash is dropped. Equivalent spellings normalize to the same string so
// endpoint sets dedupe and cache keys collapse correctly.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty relay URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "wss://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse relay URL %q: %w", raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "wss", "https":
		u.Scheme = "wss"
	case "ws", "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("relay URL %q: unsupported scheme %q", raw, u.Scheme)
	}

	u.Host = strings.ToLower(u.Host)
	if u.Path == "/" {
		u.Path = ""
	}
	u.Fragment = ""

	return u.String(), nil
}
