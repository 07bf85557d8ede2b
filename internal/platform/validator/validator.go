// internal/platform/validator/validator.go
package validator

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var (
	domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?$`)
	tldRegex    = regexp.MustCompile(`^[a-zA-Z]{2,}$`)
)

// Domain validators

// IsDomain verifica si un string es un dominio válido (sintaxis de etiquetas).
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > 253 {
		return false
	}

	if !domainRegex.MatchString(domain) {
		return false
	}

	// Verificar que no sea una IP
	if net.ParseIP(domain) != nil {
		return false
	}

	return true
}

// IsPlausibleDomain reports whether domain can be a search target: valid label
// syntax, at least two labels, an alphabetic TLD and a registrable part below
// the public suffix (so "co.uk" or "com" are rejected).
func IsPlausibleDomain(domain string) bool {
	if !IsDomain(domain) {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	if !tldRegex.MatchString(labels[len(labels)-1]) {
		return false
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil || registrable == "" {
		return false
	}

	return true
}

// NormalizeDomain normaliza un dominio a su forma canónica.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimSuffix(domain, ".")
}

// URL validators

// IsURL verifica si un string es una URL http(s) válida.
func IsURL(urlStr string) bool {
	if len(urlStr) == 0 {
		return false
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
