package repo

import "strings"

// The sheets encode lists as pipe-delimited strings. Lists are written with
// a spaced delimiter and read tolerantly, trimming whatever spacing a human
// editing the sheet left behind. A literal '|' inside an element corrupts
// the encoding; the sheet schema accepts that limitation.
const pipeDelimiter = " | "

func splitPipes(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func joinPipes(parts []string) string {
	return strings.Join(parts, pipeDelimiter)
}
