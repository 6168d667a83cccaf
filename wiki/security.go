package wiki

import (
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Outbound requests to caller-supplied URLs (link probes, upload
// fetches) go through externalClient, which refuses connections to
// private address space. The check runs at dial time, after DNS
// resolution, so a host that resolves differently between check and
// connect is still caught.

var privateIPBlocks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"0.0.0.0/8",
		"100.64.0.0/10",
		"192.0.2.0/24",
		"198.51.100.0/24",
		"203.0.113.0/24",
		"224.0.0.0/4",
		"240.0.0.0/4",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
		"ff00::/8",
	} {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil {
			privateIPBlocks = append(privateIPBlocks, block)
		}
	}
}

// isPrivateIP reports whether ip falls in loopback, RFC 1918,
// link-local or otherwise non-routable space. A nil IP counts as
// private.
func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	for _, block := range privateIPBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// isPrivateHost reports whether hostname is, or resolves to, a private
// address. A failed lookup blocks the host and carries the error.
func isPrivateHost(hostname string) (bool, error) {
	if ip := net.ParseIP(hostname); ip != nil {
		return isPrivateIP(ip), nil
	}
	ips, err := net.LookupIP(hostname)
	if err != nil {
		return true, fmt.Errorf("resolving %s: %w", hostname, err)
	}
	if len(ips) == 0 {
		return true, fmt.Errorf("no addresses for %s", hostname)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return true, nil
		}
	}
	return false, nil
}

var safeDialer = &net.Dialer{
	Timeout:   30 * time.Second,
	KeepAlive: 30 * time.Second,
	Control: func(network, address string, _ syscall.RawConn) error {
		host, _, err := net.SplitHostPort(address)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", address, err)
		}
		if isPrivateIP(net.ParseIP(host)) {
			return fmt.Errorf("connection to %s blocked", host)
		}
		return nil
	},
}

// externalClient is shared by every request that does not go to the
// wiki itself. The client timeout is a fallback cap; link probes carry
// tighter per-request deadlines.
var externalClient = &http.Client{
	Timeout: 2 * time.Minute,
	Transport: &http.Transport{
		DialContext:         safeDialer.DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return fmt.Errorf("too many redirects")
		}
		if private, _ := isPrivateHost(req.URL.Hostname()); private {
			return fmt.Errorf("redirect to %s blocked", req.URL.Hostname())
		}
		return nil
	},
}
