package m3u

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// attrRE extracts key="value" or key=value attributes from #EXTINF lines.
var attrRE = regexp.MustCompile(`([\w-]+)=(?:"([^"]*?)"|([^\s,]+))`)

// Decode parses an M3U playlist from r into Channel entries. The parser is
// streaming (bufio.Scanner), so memory use stays flat on large playlists.
// Lines that are neither #EXTINF directives nor stream URLs are skipped.
func Decode(r io.Reader) ([]*Channel, error) {
	scanner := bufio.NewScanner(r)
	// Some playlists carry very wide attribute lines.
	buf := make([]byte, 0, 256*1024)
	scanner.Buffer(buf, 1024*1024)

	var channels []*Channel
	var pending *Channel
	var seq uint64
	firstLine := true

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if firstLine {
			firstLine = false
			if !strings.HasPrefix(line, "#EXTM3U") {
				return nil, fmt.Errorf("not a valid M3U file (first line: %q)", line)
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXTINF"):
			pending = parseExtinf(line)

		case strings.HasPrefix(line, "#"):
			// Other directives (#EXTVLCOPT etc.) are ignored.

		default:
			if pending == nil {
				// A bare URL with no preceding #EXTINF gets a
				// synthetic entry so nothing is silently lost.
				pending = &Channel{Title: line, Duration: -1}
			}
			seq++
			pending.SeqId = seq
			pending.URI = line
			channels = append(channels, pending)
			pending = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	return channels, nil
}

// parseExtinf parses a "#EXTINF:<duration> [attrs],<title>" line.
func parseExtinf(line string) *Channel {
	ch := &Channel{Duration: -1}

	body := strings.TrimPrefix(line, "#EXTINF:")

	// The title follows the last comma outside of attribute values. Since
	// attribute values may contain commas, find the comma after the final
	// attribute match instead.
	attrEnd := 0
	for _, loc := range attrRE.FindAllStringIndex(body, -1) {
		attrEnd = loc[1]
	}
	if idx := strings.Index(body[attrEnd:], ","); idx >= 0 {
		ch.Title = strings.TrimSpace(body[attrEnd+idx+1:])
	}

	// Duration is the leading token before any attribute or comma.
	durToken := body
	if idx := strings.IndexAny(body, " ,"); idx >= 0 {
		durToken = body[:idx]
	}
	if dur, err := strconv.ParseFloat(durToken, 64); err == nil {
		ch.Duration = dur
	}

	tags := &TVGTags{}
	var tagged bool
	for _, m := range attrRE.FindAllStringSubmatch(body, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		switch strings.ToLower(m[1]) {
		case "tvg-id":
			tags.ID = value
			tagged = true
		case "tvg-name":
			tags.Name = value
			tagged = true
		case "tvg-logo":
			tags.Logo = value
			tagged = true
		case "group-title":
			tags.GroupTitle = value
			tagged = true
		}
	}
	if tagged {
		ch.TVGTags = tags
	}

	return ch
}
