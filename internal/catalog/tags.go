package catalog

import (
	"sort"
	"strings"

	"github.com/iventshq/ivents/internal/model"
)

// TagCloud aggregates tag frequencies across the collection and returns at
// most limit entries, most frequent first. Ties break by first-seen order
// during the scan, which makes the result deterministic for a given input
// ordering. Tags are derived from each event's raw comma-separated string
// on every call; nothing is cached or persisted.
func TagCloud(events []model.Event, limit int) []model.TagCount {
	counts := aggregateTags(events)
	if limit >= 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// SearchTags returns up to limit tag strings whose lowercase form starts
// with the lowercase prefix, ordered by descending frequency with first-seen
// tie-break. An empty or whitespace-only prefix yields no results; prefix
// search is an autocomplete affordance, not a browse-all.
func SearchTags(events []model.Event, prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}

	var out []string
	for _, tc := range aggregateTags(events) {
		if !strings.HasPrefix(strings.ToLower(tc.Tag), prefix) {
			continue
		}
		out = append(out, tc.Tag)
		if limit >= 0 && len(out) == limit {
			break
		}
	}
	return out
}

// aggregateTags counts every derived tag occurrence, case-sensitively, and
// returns the counts sorted by frequency descending. First-seen order is
// recorded during the scan and used as the tie-break key.
func aggregateTags(events []model.Event) []model.TagCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, ev := range events {
		for _, tag := range ev.TagList() {
			if _, ok := counts[tag]; !ok {
				firstSeen[tag] = order
				order++
			}
			counts[tag]++
		}
	}

	out := make([]model.TagCount, 0, len(counts))
	for tag, count := range counts {
		out = append(out, model.TagCount{Tag: tag, Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Tag] < firstSeen[out[j].Tag]
	})
	return out
}
