// Package validation checks HAT domains and user input before any request is
// built.
//
// Domains are host[:port] values such as "alice.hubofallthings.net". Cloud
// metadata endpoints are always rejected. Private and localhost addresses are
// rejected unless allowed via the HAT_ALLOW_PRIVATE environment variable
// (any value recognized by strconv.ParseBool) or SetAllowPrivate(true).
package validation

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// allowPrivate controls whether private/localhost domains are permitted.
var allowPrivate atomic.Bool

// privateNetworks holds the pre-parsed private and reserved IP ranges.
var privateNetworks []*net.IPNet

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("HAT_ALLOW_PRIVATE")))
	allowPrivate.Store(v)

	privateCIDRs := []string{
		"10.0.0.0/8",      // RFC1918
		"172.16.0.0/12",   // RFC1918
		"192.168.0.0/16",  // RFC1918
		"100.64.0.0/10",   // RFC6598
		"169.254.0.0/16",  // RFC3927
		"192.0.0.0/24",    // RFC6890
		"192.0.2.0/24",    // RFC5737
		"198.18.0.0/15",   // RFC2544
		"198.51.100.0/24", // RFC5737
		"203.0.113.0/24",  // RFC5737
		"240.0.0.0/4",     // RFC1112
		"fc00::/7",        // RFC4193
		"fe80::/10",       // RFC4291
		"ff00::/8",        // RFC4291
		"::1/128",         // RFC4291
		"::/128",          // RFC4291
		"2001:db8::/32",   // RFC3849
	}

	privateNetworks = make([]*net.IPNet, 0, len(privateCIDRs))
	for _, cidr := range privateCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		privateNetworks = append(privateNetworks, network)
	}
}

// SetAllowPrivate enables or disables private and localhost domains. Cloud
// metadata endpoints stay blocked either way.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private and localhost domains are allowed.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// ValidateDomain validates a HAT domain of the form host[:port].
//
// No DNS lookup is done; a HAT that does not resolve fails at exchange time
// as a transport failure.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if strings.Contains(domain, "://") {
		return fmt.Errorf("domain must not include a scheme, got %q", domain)
	}
	if strings.ContainsAny(domain, "/?#@ ") {
		return fmt.Errorf("domain must be a bare host[:port], got %q", domain)
	}

	host := domain
	if h, port, err := net.SplitHostPort(domain); err == nil {
		if err := validatePort(port); err != nil {
			return err
		}
		host = h
	}
	return validateHost(host)
}

// ValidateContentURL validates an absolute http(s) URL, such as the presigned
// URL file content is uploaded to.
func ValidateContentURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsedURL.Scheme)
	}
	if parsedURL.Port() != "" {
		if err := validatePort(parsedURL.Port()); err != nil {
			return err
		}
	}
	return validateHost(parsedURL.Hostname())
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

func validateHost(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("domain must contain a hostname")
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if !allowPrivate.Load() && isLocalhost(hostname) {
		return fmt.Errorf("localhost domains are not allowed")
	}
	if ip := net.ParseIP(strings.Trim(hostname, "[]")); ip != nil {
		return validateIPAddress(ip)
	}
	return validateHostname(hostname)
}

// validateHostname checks RFC 1123 label syntax.
func validateHostname(hostname string) error {
	name := strings.TrimSuffix(hostname, ".")
	if len(name) > 253 {
		return fmt.Errorf("hostname exceeds 253 characters")
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" || len(label) > 63 {
			return fmt.Errorf("invalid hostname %q", hostname)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("invalid hostname %q: labels cannot start or end with '-'", hostname)
		}
		for _, r := range label {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
				return fmt.Errorf("invalid hostname %q: unexpected character %q", hostname, r)
			}
		}
	}
	return nil
}

func isLocalhost(hostname string) bool {
	lowercase := strings.ToLower(strings.Trim(hostname, "[]"))
	switch lowercase {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0", "::":
		return true
	}
	return strings.HasSuffix(lowercase, ".localhost")
}

func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(strings.Trim(hostname, "[]"))
	switch lowercase {
	case "169.254.169.254", // AWS, Azure, GCP, DigitalOcean
		"metadata.google.internal",
		"metadata",
		"instance-data",
		"fd00:ec2::254":
		return true
	}
	return strings.HasSuffix(lowercase, ".metadata.google.internal")
}

func validateIPAddress(ip net.IP) error {
	if ip.String() == "169.254.169.254" {
		return fmt.Errorf("cloud metadata IP address is not allowed")
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local IP addresses are not allowed")
	}
	if allowPrivate.Load() {
		return nil
	}
	if ip.IsLoopback() {
		return fmt.Errorf("loopback IP addresses are not allowed")
	}
	if isPrivateIP(ip) {
		return fmt.Errorf("private IP addresses are not allowed")
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
