package pkg

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// docker hands out bridge networks from this range, their gateway ends in .1
var dockerBridges = netip.MustParsePrefix("172.16.0.0/12")

// LocalClientIP stands in for loopback clients and requests forwarded by a
// local docker bridge.
const LocalClientIP = "localhost"

func isLocal(addr netip.Addr) bool {
	if addr.IsLoopback() {
		return true
	}
	return addr.Is4() && dockerBridges.Contains(addr) && addr.As4()[3] == 1
}

// ReadUserIP resolves the client ip of a request, trusting X-Real-Ip and then
// the first X-Forwarded-For hop over the connection address.
func ReadUserIP(r *http.Request) (string, error) {
	raw := r.Header.Get("X-Real-Ip")
	if raw == "" {
		raw, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		raw = r.RemoteAddr
	}

	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return "", fmt.Errorf("ip addr %s is invalid", raw)
	}
	addr = addr.Unmap()

	if isLocal(addr) {
		return LocalClientIP, nil
	}
	return addr.String(), nil
}
