package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// parseESURI parses an Elasticsearch URI and returns the base URL (without credentials,
// query or fragment), username, and password. Returns an error if the URI is invalid,
// has an unsupported scheme, or names a port outside 1-65535.
func parseESURI(esURI string) (baseURL, username, password string, err error) {
	u, err := url.Parse(esURI)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid URI %q: %w", esURI, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", "", fmt.Errorf("unsupported scheme %q (must be http or https)", u.Scheme)
	}

	if u.Hostname() == "" {
		return "", "", "", fmt.Errorf("invalid URI %q: host is required", esURI)
	}

	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return "", "", "", fmt.Errorf("invalid URI %q: port %s out of range", esURI, p)
		}
	}

	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
		// Remove credentials from URL stored in config
		u.User = nil
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), username, password, nil
}

// resolveCredentials picks each of user and password independently with
// precedence flag > env > URI.
func resolveCredentials(uriUser, uriPass, envUser, envPass, flagUser, flagPass string) (user, pass string) {
	user, pass = uriUser, uriPass
	if envUser != "" {
		user = envUser
	}
	if envPass != "" {
		pass = envPass
	}
	if flagUser != "" {
		user = flagUser
	}
	if flagPass != "" {
		pass = flagPass
	}
	return user, pass
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
