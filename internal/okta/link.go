package okta

import (
	"net/http"
	"strings"
)

// nextLink returns the target of the rel="next" Link header, or "".
// Okta sends one Link header per relation, but comma-joined values are accepted too.
func nextLink(h http.Header) string {
	for _, value := range h.Values("Link") {
		for _, part := range strings.Split(value, ",") {
			segments := strings.Split(part, ";")
			if len(segments) < 2 {
				continue
			}
			target := strings.TrimSpace(segments[0])
			if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}
			for _, param := range segments[1:] {
				key, val, ok := strings.Cut(strings.TrimSpace(param), "=")
				if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
					continue
				}
				if strings.Trim(strings.TrimSpace(val), `"`) == "next" {
					return target[1 : len(target)-1]
				}
			}
		}
	}
	return ""
}
