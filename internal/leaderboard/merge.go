package leaderboard

// Entry is one ranked row. Rank is assigned by Merge, not trusted from the
// upstream query.
type Entry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Steps       int    `json:"steps"`
	Streak      int    `json:"streak"`
}

// Merge takes an already-ordered list, removes hidden users, deduplicates
// by user ID keeping the first occurrence, and renumbers ranks contiguously
// from 1 preserving the input order.
func Merge(ranked []Entry, hidden map[string]bool) []Entry {
	merged := make([]Entry, 0, len(ranked))
	seen := make(map[string]bool, len(ranked))

	for _, entry := range ranked {
		if hidden[entry.UserID] || seen[entry.UserID] {
			continue
		}
		seen[entry.UserID] = true
		entry.Rank = len(merged) + 1
		merged = append(merged, entry)
	}
	return merged
}
