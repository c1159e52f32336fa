package email

import (
	"strings"
	"unicode"
)

// Normalize lower-cases and trims an address so it can be used as a unique key.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// InDomain reports whether address belongs to domain. The comparison is
// case-insensitive and matches the full host part, so "a@evilfinal.co.il" is
// not in "final.co.il".
func InDomain(address, domain string) bool {
	domain = strings.TrimPrefix(Normalize(domain), "@")
	if domain == "" {
		return true
	}
	at := strings.LastIndexByte(address, '@')
	if at <= 0 || at == len(address)-1 {
		return false
	}
	return Normalize(address[at+1:]) == domain
}

// DeriveDisplayName builds "First Last" from the local part of an address,
// used when the identity provider supplies no name.
func DeriveDisplayName(address string) string {
	first, last := DeriveNameFromEmail(address)
	if last == "" {
		return first
	}
	return first + " " + last
}

func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", ""
	}

	first := capitalize(parts[0])
	last := ""
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
