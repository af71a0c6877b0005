package validate

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ipv4Pattern  = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
	labelPattern = regexp.MustCompile(`^[\p{L}\p{N}](?:[\p{L}\p{N}-]*[\p{L}\p{N}])?$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
)

const maxLabelLen = 63

// URL reports whether s is an absolute http or https URL with a plausible
// host. IPv4 and bracketed IPv6 literals are accepted; domain names need at
// least two labels and a non-numeric TLD of two or more characters.
func URL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Opaque != "" || u.Host == "" {
		return false
	}

	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return false
		}
	} else if strings.HasSuffix(u.Host, ":") {
		return false
	}

	if !validHost(u.Host, u.Hostname()) {
		return false
	}

	if strings.Contains(u.EscapedPath(), "//") || strings.Contains(u.RawQuery, "//") {
		return false
	}

	return true
}

func validHost(host, hostname string) bool {
	if hostname == "" {
		return false
	}

	if strings.HasPrefix(host, "[") {
		ip := net.ParseIP(hostname)
		return ip != nil && strings.Contains(hostname, ":")
	}

	if ipv4Pattern.MatchString(hostname) {
		return validIPv4(hostname)
	}

	return validDomain(hostname)
}

func validIPv4(host string) bool {
	for _, octet := range strings.Split(host, ".") {
		n, err := strconv.Atoi(octet)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

func validDomain(host string) bool {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if label == "" || len(label) > maxLabelLen {
			return false
		}
		if !labelPattern.MatchString(label) {
			return false
		}
	}

	tld := labels[len(labels)-1]
	if utf8.RuneCountInString(tld) < 2 || digitsOnly.MatchString(tld) {
		return false
	}
	return true
}
