package ledger

import "strings"

// LineClass is the classifier's verdict for one line of book text.
type LineClass int

const (
	LineNoise LineClass = iota
	LineRecordStart
	LineContinuation
)

// Classify tags a single line as noise, the start of a property record, or a
// continuation of the current record. Checks run in order; first match wins.
func (r *Rules) Classify(line string) LineClass {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return LineNoise
	}

	upper := strings.ToUpper(stripped)
	for _, marker := range r.noiseMarkers {
		if strings.Contains(upper, marker) {
			return LineNoise
		}
	}
	for _, marker := range r.noiseContains {
		if strings.Contains(stripped, marker) {
			return LineNoise
		}
	}
	for _, prefix := range r.noisePrefixes {
		if strings.HasPrefix(stripped, prefix) {
			return LineNoise
		}
	}
	for _, re := range r.noisePatterns {
		if re.MatchString(stripped) {
			return LineNoise
		}
	}

	if r.recordStart.MatchString(stripped) {
		return LineRecordStart
	}
	return LineContinuation
}
