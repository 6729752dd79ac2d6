package github

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// PageLinks maps a link relation name (next, prev, first, last) to the
// page number embedded in that relation's URL. Recomputed per response,
// never persisted.
type PageLinks map[string]int

var relPattern = regexp.MustCompile(`rel="([^"]+)"`)

// ParseLinkHeader parses GitHub's Link header, a comma-separated list of
// `<url>; rel="name"` pairs, into a PageLinks map. Entries that do not
// match the expected shape are skipped. An empty header yields an empty
// map, which callers read as "no further pages".
func ParseLinkHeader(header string) PageLinks {
	links := PageLinks{}
	if header == "" {
		return links
	}

	for _, part := range strings.Split(header, ",") {
		segments := strings.SplitN(part, ";", 2)
		if len(segments) != 2 {
			continue
		}

		rawURL := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		relMatch := relPattern.FindStringSubmatch(segments[1])
		if relMatch == nil {
			continue
		}

		u, err := url.Parse(rawURL)
		if err != nil {
			continue
		}

		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			continue
		}

		links[relMatch[1]] = page
	}

	return links
}
