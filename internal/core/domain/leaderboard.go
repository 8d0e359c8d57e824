package domain

// LeaderboardEntry is one ranked row. Rank zero means unranked (the
// backend could not place the viewer inside any window).
type LeaderboardEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Level     int    `json:"level"`
	XP        int    `json:"xp"`
	Rank      int    `json:"rank"`
	IsPremium bool   `json:"is_premium"`
	IsViewer  bool   `json:"is_viewer,omitempty"`
}

type Leaderboard struct {
	Range string             `json:"range"`
	Items []LeaderboardEntry `json:"items"`
	Me    *LeaderboardEntry  `json:"me,omitempty"`
}

var leaderboardRanges = map[string]bool{"week": true, "month": true, "all": true}

func NormalizeLeaderboardRange(value string) string {
	if leaderboardRanges[value] {
		return value
	}
	return "month"
}

// MergeLeaderboard combines the fetched top list with the viewer's own
// entry. Ranks are always reassigned sequentially from one. A viewer
// whose rank falls inside the window and who is not already listed is
// spliced in at that position and the list re-truncated; otherwise the
// viewer comes back as a separate trailing row. Identity is compared as
// strings so numeric and string ids from different endpoints match.
// The displayed list never contains the viewer twice.
func MergeLeaderboard(top []LeaderboardEntry, me *LeaderboardEntry, limit int) ([]LeaderboardEntry, *LeaderboardEntry) {
	if limit < 1 {
		limit = 1
	}

	rerank := func(items []LeaderboardEntry) []LeaderboardEntry {
		for i := range items {
			items[i].Rank = i + 1
		}
		return items
	}

	items := make([]LeaderboardEntry, len(top))
	copy(items, top)

	if me == nil {
		return rerank(items), nil
	}

	markViewer := func(items []LeaderboardEntry) bool {
		found := false
		for i := range items {
			if items[i].ID == me.ID {
				items[i].IsViewer = true
				found = true
			}
		}
		return found
	}

	if markViewer(items) {
		return rerank(items), nil
	}

	if me.Rank < 1 || me.Rank > limit {
		you := *me
		you.IsViewer = true
		return rerank(items), &you
	}

	if len(items) > limit {
		items = items[:limit]
	}
	at := me.Rank - 1
	if at > len(items) {
		at = len(items)
	}
	viewer := *me
	viewer.IsViewer = true

	items = append(items, LeaderboardEntry{})
	copy(items[at+1:], items[at:])
	items[at] = viewer
	if len(items) > limit {
		items = items[:limit]
	}
	return rerank(items), nil
}
