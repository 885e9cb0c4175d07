package analytics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultIPLookupURL = "https://api.ipify.org"

// IPLookup resolves the server's public address through an external echo
// service. It fills in the visitor IP for session rows when the incoming
// request only shows a private address, which happens in local and
// single-host proxy setups.
type IPLookup struct {
	url    string
	client *http.Client
}

func NewIPLookup(url string, timeout time.Duration) *IPLookup {
	if strings.TrimSpace(url) == "" {
		url = defaultIPLookupURL
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &IPLookup{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// PublicIP returns the address the echo service sees.
func (l *IPLookup) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return "", fmt.Errorf("analytics: build ip lookup request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("analytics: ip lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analytics: ip lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("analytics: read ip lookup response: %w", err)
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("analytics: ip lookup returned invalid address %q", ip)
	}
	return ip, nil
}

// IsPrivateAddr reports whether host (an IP, or host:port) is loopback or
// from a private range.
func IsPrivateAddr(addr string) bool {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}
