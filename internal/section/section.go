// Package section splits raw gateway output into named line groups.
//
// The gateway answers one poll with a single text blob in which sentinel
// marker lines separate the individual data sets. Splitting is a small
// state machine: the current section starts as Default and every marker
// line transitions it, consuming the marker itself. Content lines are kept
// verbatim; deciding what is garbage belongs to the per-section parsers.
package section

import "strings"

// Default names the implicit section holding lines seen before any marker.
const Default = "default"

// Marker maps a sentinel token to the section it introduces.
type Marker struct {
	Name  string
	Token string
}

// Sections maps a section name to its ordered lines.
type Sections map[string][]string

// Lines returns the lines of one section. A section whose marker never
// appeared yields nil, which callers treat as an empty section.
func (s Sections) Lines(name string) []string {
	return s[name]
}

// Split partitions raw into sections. Blank lines are dropped; every other
// line is appended to the current section verbatim, indentation included.
func Split(raw string, markers []Marker) Sections {
	out := make(Sections)
	current := Default
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if name, ok := matchMarker(line, markers); ok {
			current = name
			continue
		}
		out[current] = append(out[current], line)
	}
	return out
}

func matchMarker(line string, markers []Marker) (string, bool) {
	for _, m := range markers {
		if strings.Contains(line, m.Token) {
			return m.Name, true
		}
	}
	return "", false
}

// SplitPairs groups lines into (outbound, inbound) pairs for samplers that
// emit two lines per record. Lines carrying neither token are ignored. An
// outbound line must be immediately followed by an inbound line to form a
// pair; on a mismatch the outbound line is dropped and scanning resumes at
// the next line, so one corrupt record never loses the rest of the batch.
func SplitPairs(lines []string, outToken, inToken string) [][2]string {
	marked := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(line, outToken) || strings.Contains(line, inToken) {
			marked = append(marked, line)
		}
	}

	var pairs [][2]string
	for i := 0; i < len(marked)-1; {
		if !strings.Contains(marked[i], outToken) {
			i++
			continue
		}
		if strings.Contains(marked[i+1], inToken) {
			pairs = append(pairs, [2]string{marked[i], marked[i+1]})
			i += 2
			continue
		}
		i++
	}
	return pairs
}
