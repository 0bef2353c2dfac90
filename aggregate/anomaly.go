package aggregate

import (
	"sort"

	lev "github.com/agnivade/levenshtein"
)

// Suspect flags a sensor id that is probably a corrupted copy of another:
// it was reported far less often than a neighbor at edit distance 1.
// The scan is purely diagnostic; counts are never merged or mutated.
type Suspect struct {
	SensorID    string // the rarely seen, probably mangled id
	Likely      string // the frequent id it most likely belongs to
	Count       int    // classified records observed for SensorID
	LikelyCount int    // classified records observed for Likely
}

// SuspectIDs scans the aggregated sensor ids for probable line corruption.
// An id is flagged when some other id at edit distance 1 was observed at
// least minRatio times more often. When several neighbors qualify, the most
// frequent one wins. Results are sorted by suspect id for stable output.
func (a *Aggregator) SuspectIDs(minRatio int) []Suspect {
	if minRatio <= 1 {
		minRatio = 2
	}

	a.mu.Lock()
	ids := make([]string, len(a.order))
	copy(ids, a.order)
	seen := make(map[string]int, len(a.devices))
	for id, st := range a.devices {
		seen[id] = st.seen
	}
	a.mu.Unlock()

	var suspects []Suspect
	for _, id := range ids {
		count := seen[id]
		best := ""
		bestCount := 0
		for _, other := range ids {
			if other == id {
				continue
			}
			otherCount := seen[other]
			if otherCount < count*minRatio || otherCount <= bestCount {
				continue
			}
			if lev.ComputeDistance(id, other) != 1 {
				continue
			}
			best = other
			bestCount = otherCount
		}
		if best != "" {
			suspects = append(suspects, Suspect{
				SensorID:    id,
				Likely:      best,
				Count:       count,
				LikelyCount: bestCount,
			})
		}
	}
	sort.Slice(suspects, func(i, j int) bool { return suspects[i].SensorID < suspects[j].SensorID })
	return suspects
}
