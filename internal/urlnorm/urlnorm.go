// Package urlnorm canonicalizes URLs for duplicate comparison.
package urlnorm

import (
	"net/url"
	"sort"
	"strings"
)

// internalSchemes are browser-internal pages that never participate in
// duplicate detection, not even against each other.
var internalSchemes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"about:",
	"devtools://",
}

// IsInternal reports whether the URL points at a browser-internal or blank
// page. Blank/new-tab pages count as internal.
func IsInternal(raw string) bool {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return true
	}
	for _, prefix := range internalSchemes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Normalize returns a canonical form of raw such that two URLs address the
// same page iff their canonical forms are equal: host lowercased, default
// port dropped for http/https, query keys sorted, fragment dropped. A URL
// that fails to parse is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.ToLower(u.Host)
	switch {
	case u.Scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = sortQuery(u.RawQuery)

	return u.String()
}

// sortQuery re-serializes a raw query string with keys in lexicographic
// order. Unparseable queries are kept as-is.
func sortQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return rawQuery
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		vs := values[k]
		sort.Strings(vs)
		for _, v := range vs {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// SamePage reports whether two URLs address the same page. Internal and
// blank pages are never duplicates of anything.
func SamePage(a, b string) bool {
	if IsInternal(a) || IsInternal(b) {
		return false
	}
	return Normalize(a) == Normalize(b)
}

// Host extracts the registrable host for domain clustering, stripping a
// leading "www." and any port.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
