// Package report renders the final aggregation summary as text.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"sensormon/aggregate"
)

// Render formats the summary: overall counts, each faulty sensor with its
// decoded reason, then healthy sensors sorted by descending occurrence count.
// The sort is stable so sensors with equal counts keep their first-appearance
// order.
func Render(s aggregate.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "All big messages: %s\n\n", humanize.Comma(int64(s.TotalDevices)))
	fmt.Fprintf(&b, "Successful big messages: %s\n\n", humanize.Comma(int64(s.HealthyCount)))
	fmt.Fprintf(&b, "Failed big messages: %s\n\n", humanize.Comma(int64(s.FaultyCount)))

	for _, f := range s.Faulty {
		fmt.Fprintf(&b, "%s: %s\n", f.SensorID, f.Reason)
	}

	b.WriteString("\nSuccess messages count:\n")
	healthy := make([]aggregate.SensorHealth, len(s.Healthy))
	copy(healthy, s.Healthy)
	sort.SliceStable(healthy, func(i, j int) bool { return healthy[i].Count > healthy[j].Count })
	for _, h := range healthy {
		fmt.Fprintf(&b, "%s: %d\n", h.SensorID, h.Count)
	}

	return b.String()
}
