package domain

// BalanceBucket is one category slice of the balance wheel.
type BalanceBucket struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color,omitempty"`
}

type BalanceWheel struct {
	Total int             `json:"total"`
	Items []BalanceBucket `json:"items"`
}

// preferredCategoryColors maps well-known category labels to their
// brand colors. Unknown labels draw from the fallback palette.
var preferredCategoryColors = map[string]string{
	"Health":          "#1BB6A7",
	"Work":            "#3C7CFF",
	"Learning":        "#6C63FF",
	"Relationships":   "#F24E9B",
	"Finance":         "#F59E0B",
	"Personal Growth": "#FACC15",
	"Education":       "#22C55E",
	"Personal":        "#8892FF",
}

var fallbackPalette = []string{
	"#1BB6A7",
	"#3C7CFF",
	"#6C63FF",
	"#F24E9B",
	"#F59E0B",
	"#FACC15",
	"#22C55E",
	"#14B8A6",
	"#EF4444",
	"#A855F7",
	"#0EA5E9",
	"#84CC16",
}

const (
	wheelGapDegrees   = 2.0
	wheelGapColor     = "#FFFFFF"
	wheelNeutralColor = "#E5E7EB"
)

// BuildBalance buckets goal-met days by category label. Each day whose
// count reached the habit's goal contributes exactly one point, so a
// habit with a high daily goal cannot dominate the wheel. Habits
// without a category label are skipped; with publicOnly set, private
// habits are too. Buckets keep first-seen order.
func BuildBalance(habits []*Habit, publicOnly bool) BalanceWheel {
	totals := make(map[string]int)
	var order []string

	for _, h := range habits {
		if h == nil {
			continue
		}
		if publicOnly && !h.IsPublic() {
			continue
		}
		label := h.CategoryName
		if label == "" {
			continue
		}
		if _, seen := totals[label]; !seen {
			order = append(order, label)
			totals[label] = 0
		}

		goal := h.EffectiveGoal()
		for _, c := range h.Completions {
			if c.Count >= goal {
				totals[label]++
			}
		}
	}

	wheel := BalanceWheel{Items: make([]BalanceBucket, 0, len(order))}
	for _, label := range order {
		wheel.Items = append(wheel.Items, BalanceBucket{Label: label, Value: totals[label]})
		wheel.Total += totals[label]
	}
	return wheel
}

// AssignColors gives every bucket a distinct color: the preferred
// category color when free, otherwise the first unused palette entry.
// When the palette runs out colors repeat rather than fail.
func AssignColors(items []BalanceBucket) []BalanceBucket {
	used := make(map[string]bool)
	colored := make([]BalanceBucket, len(items))

	for i, item := range items {
		color := ""
		if preferred, ok := preferredCategoryColors[item.Label]; ok && !used[preferred] {
			color = preferred
		}
		if color == "" {
			for _, candidate := range fallbackPalette {
				if !used[candidate] {
					color = candidate
					break
				}
			}
		}
		if color == "" {
			color = fallbackPalette[i%len(fallbackPalette)]
		}
		used[color] = true

		item.Color = color
		colored[i] = item
	}
	return colored
}

// WheelSegment is one colored arc of the ring chart, degrees clockwise
// from the top.
type WheelSegment struct {
	Color string  `json:"color"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segments lays the buckets out as a gapped ring: a fixed gap after
// each segment, with the remaining arc split proportionally by value.
// An empty wheel renders as a single neutral full circle instead of
// dividing by zero.
func (w BalanceWheel) Segments() []WheelSegment {
	if w.Total <= 0 || len(w.Items) == 0 {
		return []WheelSegment{{Color: wheelNeutralColor, Start: 0, End: 360}}
	}

	available := 360 - wheelGapDegrees*float64(len(w.Items))
	segments := make([]WheelSegment, 0, len(w.Items)*2)

	angle := 0.0
	for _, item := range w.Items {
		span := float64(item.Value) / float64(w.Total) * available
		segments = append(segments,
			WheelSegment{Color: item.Color, Start: angle, End: angle + span},
			WheelSegment{Color: wheelGapColor, Start: angle + span, End: angle + span + wheelGapDegrees},
		)
		angle += span + wheelGapDegrees
	}
	return segments
}
