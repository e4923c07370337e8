package sources

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

const rateLimitCooldown = 30 * time.Second

// EgressPool rotates outbound requests across SOCKS5 proxies, skipping proxies
// that were recently rate limited. Without proxies it hands out one direct client.
type EgressPool struct {
	mu        sync.Mutex
	clients   []*http.Client
	hosts     []string
	next      int
	cooldowns map[int]time.Time
	now       func() time.Time
}

func NewEgressPool(proxyURLs []string, timeout time.Duration) (*EgressPool, error) {
	pool := &EgressPool{
		cooldowns: make(map[int]time.Time),
		now:       time.Now,
	}
	seen := make(map[string]bool)

	for _, proxyURL := range proxyURLs {
		if proxyURL == "" || seen[proxyURL] {
			continue
		}
		seen[proxyURL] = true

		client, host, err := newProxyClient(proxyURL, timeout)
		if err != nil {
			return nil, err
		}
		pool.clients = append(pool.clients, client)
		pool.hosts = append(pool.hosts, host)
	}

	if len(pool.clients) == 0 {
		pool.clients = []*http.Client{{Timeout: timeout}}
		pool.hosts = []string{"direct"}
		return pool, nil
	}

	slog.Info("egress pool created", "count", len(pool.clients), "hosts", pool.hosts)
	return pool, nil
}

func newProxyClient(proxyURL string, timeout time.Duration) (*http.Client, string, error) {
	client := &http.Client{Timeout: timeout}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return nil, "", err
	}

	if parsedURL.Scheme != "socks5" {
		return client, "direct", nil
	}

	// SOCKS5 proxy with authentication
	var auth *proxy.Auth
	if parsedURL.User != nil {
		password, _ := parsedURL.User.Password()
		auth = &proxy.Auth{
			User:     parsedURL.User.Username(),
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
	if err != nil {
		return nil, "", err
	}

	client.Transport = &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}

	return client, parsedURL.Host, nil
}

// Next returns the next client not on cooldown. When every proxy is cooling down
// the one that becomes available soonest is returned.
func (p *EgressPool) Next() (*http.Client, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.clients)
	now := p.now()
	soonest := -1
	for attempt := 0; attempt < n; attempt++ {
		i := p.next % n
		p.next++

		until, cooling := p.cooldowns[i]
		if !cooling || !now.Before(until) {
			delete(p.cooldowns, i)
			return p.clients[i], p.hosts[i]
		}
		if soonest == -1 || until.Before(p.cooldowns[soonest]) {
			soonest = i
		}
	}

	return p.clients[soonest], p.hosts[soonest]
}

// MarkRateLimited puts the proxy on cooldown.
func (p *EgressPool) MarkRateLimited(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, h := range p.hosts {
		if h == host {
			p.cooldowns[i] = p.now().Add(rateLimitCooldown)
			slog.Debug("egress on cooldown", "host", host, "duration_seconds", rateLimitCooldown.Seconds())
			return
		}
	}
}
