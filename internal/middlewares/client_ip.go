package middlewares

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidProxy = errors.New("invalid trusted proxy")

// IPResolver identifies the caller of a request. Forwarding headers are only
// honoured when the connection comes from a trusted proxy.
type IPResolver struct {
	trusted []netip.Prefix
}

// NewIPResolver parses a comma separated list of proxy addresses or CIDRs.
// An empty list trusts nobody and keys callers on the socket peer.
func NewIPResolver(trustedProxies string) (*IPResolver, error) {
	resolver := &IPResolver{trusted: nil}

	for _, field := range strings.Split(trustedProxies, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		if !strings.Contains(field, "/") {
			addr, err := netip.ParseAddr(field)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidProxy, "%q", field)
			}
			resolver.trusted = append(resolver.trusted, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))

			continue
		}

		prefix, err := netip.ParsePrefix(field)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidProxy, "%q", field)
		}
		resolver.trusted = append(resolver.trusted, prefix.Masked())
	}

	return resolver, nil
}

// ClientIP returns the socket peer, or, behind a trusted proxy, the nearest
// untrusted hop of X-Forwarded-For (then X-Real-IP).
func (res *IPResolver) ClientIP(request *http.Request) string {
	peer := remoteHost(request.RemoteAddr)
	if res == nil || !res.isTrusted(peer) {
		return peer
	}

	if forwarded := request.Header.Values("X-Forwarded-For"); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !res.isTrusted(hop) {
				return hop
			}
		}
	}

	if realIP := strings.TrimSpace(request.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return peer
}

func (res *IPResolver) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range res.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
