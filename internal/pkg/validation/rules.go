package validation

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	EmailPattern    = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	UsernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)
)

const (
	TitleMaxLength       = 120
	DescriptionMaxLength = 5000
	NameMaxLength        = 100
	BioMaxLength         = 500
)

// NormalizeEmail lower-cases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmail reports whether email (after normalization) looks like an address
func IsEmail(email string) bool {
	return EmailPattern.MatchString(NormalizeEmail(email))
}

// IsUsername reports whether name is a valid handle
func IsUsername(name string) bool {
	return UsernamePattern.MatchString(name)
}

// IsHTTPURL reports whether s is an absolute http(s) URL
func IsHTTPURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// EmailDomain returns the part after the @ of a normalized address
func EmailDomain(email string) string {
	_, domain, found := strings.Cut(NormalizeEmail(email), "@")
	if !found {
		return ""
	}
	return domain
}

// MatchesDomain reports whether email belongs to one of domains or one of
// their subdomains (ada@cs.uni.edu matches uni.edu).
func MatchesDomain(email string, domains []string) bool {
	domain := EmailDomain(email)
	if domain == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d == "" {
			continue
		}
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// UsernameFromEmail derives a handle candidate from the local part of email
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(NormalizeEmail(email), "@")
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			b.WriteRune(r)
		case r == '-' || r == '+':
			b.WriteRune('_')
		}
	}
	name := b.String()
	for len(name) < 3 {
		name += "_"
	}
	if len(name) > 30 {
		name = name[:30]
	}
	return name
}
