package sfz

import (
	"iter"
	"strings"
)

// commentMarker starts a comment line.
const commentMarker = "//"

// Lines yields the trimmed lines of content, top to bottom, skipping blank
// lines and comment lines. Both \n and \r end a line. Ranging over the
// sequence again starts from the top.
func Lines(content string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := content
		for len(rest) > 0 {
			var line string
			if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
				line, rest = rest[:i], rest[i+1:]
			} else {
				line, rest = rest, ""
			}
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, commentMarker) {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}
