package services

import (
	"context"
	"net"
	"net/url"
	"time"
)

// DialChecker reports connectivity by opening a TCP connection to the catalog host.
type DialChecker struct {
	address string
	timeout time.Duration
	dial    func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewDialChecker derives host:port from rawURL. The port defaults to 443 for https and 80 otherwise.
func NewDialChecker(rawURL string, timeout time.Duration) *DialChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	address := "raw.githubusercontent.com:443"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		port := u.Port()
		if port == "" {
			port = "80"
			if u.Scheme == "https" {
				port = "443"
			}
		}
		address = net.JoinHostPort(u.Hostname(), port)
	}

	d := &net.Dialer{Timeout: timeout}
	return &DialChecker{address: address, timeout: timeout, dial: d.DialContext}
}

// Address returns the dialed host:port.
func (c *DialChecker) Address() string {
	return c.address
}

// HasConnectivity reports whether a connection could be opened within the timeout.
func (c *DialChecker) HasConnectivity(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(ctx, "tcp", c.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// StaticChecker always reports the same answer.
type StaticChecker bool

func (s StaticChecker) HasConnectivity(context.Context) bool { return bool(s) }
