// Package react incrementally parses ReAct-style completions into
// intermediate thought lines and a final answer. It is shared by the
// provider adapters, which feed it streamed deltas.
package react

import "strings"

// Marker prefixes for intermediate reasoning lines.
var thoughtPrefixes = []string{"Thought:", "Action:", "Action Input:", "Observation:"}

const answerPrefix = "Final Answer:"

// Parse splits a complete, non-streamed completion into its intermediate
// reasoning lines and the final answer.
func Parse(content string) (thoughts []string, answer string) {
	s := NewScanner(func(th string) { thoughts = append(thoughts, th) })
	s.Write(content)
	return thoughts, s.Finish()
}

// Scanner consumes streamed completion text and emits each completed
// intermediate reasoning line through its callback. Text after a
// "Final Answer:" marker, or the whole completion when no markers are
// present, becomes the final answer returned by Finish.
type Scanner struct {
	emit     func(thought string)
	line     strings.Builder
	answer   strings.Builder
	plain    strings.Builder
	inAnswer bool
}

// NewScanner creates a scanner that calls emit for each completed
// intermediate reasoning line.
func NewScanner(emit func(thought string)) *Scanner {
	return &Scanner{emit: emit}
}

// Write feeds a streamed delta to the scanner.
func (s *Scanner) Write(delta string) {
	for _, r := range delta {
		if r == '\n' {
			s.flushLine()
			continue
		}
		s.line.WriteRune(r)
	}
}

// Finish flushes any partial line and returns the final answer text.
func (s *Scanner) Finish() string {
	s.flushLine()
	if s.inAnswer {
		return strings.TrimSpace(s.answer.String())
	}
	return strings.TrimSpace(s.plain.String())
}

func (s *Scanner) flushLine() {
	line := s.line.String()
	s.line.Reset()
	trimmed := strings.TrimSpace(line)

	if idx := strings.Index(trimmed, answerPrefix); idx >= 0 {
		s.inAnswer = true
		s.answer.Reset()
		s.answer.WriteString(strings.TrimSpace(trimmed[idx+len(answerPrefix):]))
		return
	}

	for _, p := range thoughtPrefixes {
		if strings.HasPrefix(trimmed, p) {
			s.inAnswer = false
			if s.emit != nil {
				s.emit(trimmed)
			}
			return
		}
	}

	if s.inAnswer {
		s.answer.WriteByte('\n')
		s.answer.WriteString(line)
		return
	}
	if trimmed != "" {
		if s.plain.Len() > 0 {
			s.plain.WriteByte('\n')
		}
		s.plain.WriteString(line)
	}
}
