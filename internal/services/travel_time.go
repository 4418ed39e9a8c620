package services

// Visit durations in minutes, keyed by place type.
var visitDurations = map[string]int{
	"museum":             120,
	"amusement_park":     240,
	"zoo":                180,
	"park":               90,
	"restaurant":         90,
	"tourist_attraction": 120,
	"shopping_mall":      120,
	"church":             45,
	"art_gallery":        90,
	"aquarium":           120,
	"casino":             180,
	"night_club":         180,
	"spa":                120,
	"gym":                90,
	"movie_theater":      150,
}

const defaultVisitMinutes = 60

// EstimateVisitDuration returns the duration of the first category with a
// known estimate, or 60 minutes.
func EstimateVisitDuration(categories []string) int {
	for _, c := range categories {
		if d, ok := visitDurations[c]; ok {
			return d
		}
	}
	return defaultVisitMinutes
}

const (
	Morning   = "Morning (9AM-12PM)"
	Afternoon = "Afternoon (1PM-5PM)"
	Evening   = "Evening (6PM-10PM)"
	Anytime   = "Anytime"
)

var visitWindows = []struct {
	label string
	types map[string]struct{}
}{
	{Morning, set("church", "park", "zoo", "museum")},
	{Afternoon, set("shopping_mall", "tourist_attraction", "art_gallery")},
	{Evening, set("restaurant", "night_club", "casino", "bar")},
}

// SuggestBestVisitTimes returns the matching time windows in
// Morning, Afternoon, Evening order, or ["Anytime"] when none match.
func SuggestBestVisitTimes(categories []string) []string {
	var out []string
	for _, w := range visitWindows {
		for _, c := range categories {
			if _, ok := w.types[c]; ok {
				out = append(out, w.label)
				break
			}
		}
	}

	if len(out) == 0 {
		return []string{Anytime}
	}
	return out
}

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
