package config

import (
	"net"
	"net/url"
	"os"
	"sync"
)

var (
	inContainerOnce   sync.Once
	inContainerResult bool

	// containerMarkers are files present inside Docker or Snowpark Container Services.
	containerMarkers = []string{"/.dockerenv", "/snowflake/session"}
)

// IsRunningInContainer reports whether the process runs inside a container.
// The result is cached after the first call.
func IsRunningInContainer() bool {
	inContainerOnce.Do(func() {
		for _, marker := range containerMarkers {
			if _, err := os.Stat(marker); err == nil {
				inContainerResult = true
				return
			}
		}
	})
	return inContainerResult
}

// ResolveURLForContainer rewrites a loopback host in rawURL to host.docker.internal
// when running in a container, so a completion endpoint started on the host machine
// stays reachable. Anything it cannot parse is returned unchanged.
func ResolveURLForContainer(rawURL string) string {
	return resolveURL(rawURL, IsRunningInContainer())
}

func resolveURL(rawURL string, inContainer bool) string {
	if !inContainer || rawURL == "" {
		return rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return rawURL
	}

	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort("host.docker.internal", port)
	} else {
		u.Host = "host.docker.internal"
	}
	return u.String()
}
