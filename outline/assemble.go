package outline

// Assemble turns heading candidates into outline entries. Order and levels
// are kept exactly as given; consumers that want a tree rebuild it from the
// levels themselves.
func Assemble(candidates []HeadingCandidate) []Entry {
	entries := make([]Entry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, Entry{
			Level: c.Level.String(),
			Text:  c.Text,
			Page:  c.Page,
		})
	}
	return entries
}
