package ledger

import "strings"

type segState int

const (
	segIdle segState = iota
	segOpen
)

// Segment groups lines into per-record line groups. A record-start line
// closes any open group and opens a new one; continuations append only while
// a group is open; noise lines never append and never close. The trailing
// open group is flushed at end of input. Group lines are stored with layout
// indentation trimmed.
func (r *Rules) Segment(lines []string) [][]string {
	var (
		groups  [][]string
		current []string
	)
	state := segIdle

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch r.Classify(line) {
		case LineNoise:
			continue
		case LineRecordStart:
			if state == segOpen {
				groups = append(groups, current)
			}
			current = []string{line}
			state = segOpen
		case LineContinuation:
			if state == segOpen {
				current = append(current, line)
			}
		}
	}
	if state == segOpen {
		groups = append(groups, current)
	}

	return groups
}
