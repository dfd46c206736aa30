package availability

import (
	"sort"
	"time"

	"slotgate/models"
)

// MergeIntervals sorts busy intervals ascending and coalesces every overlap,
// so the result is pairwise non-overlapping and covers exactly the same
// instants as the input union. Merging is idempotent.
func MergeIntervals(in []models.BusyInterval) []models.BusyInterval {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]models.BusyInterval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []models.BusyInterval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// clipExpand applies the safety buffer to every busy interval and clips the
// result to the window, dropping intervals that fall entirely outside it.
func clipExpand(busy []models.BusyInterval, winStart, winEnd time.Time, buffer time.Duration) []models.BusyInterval {
	var out []models.BusyInterval
	for _, b := range busy {
		start := b.Start.Add(-buffer)
		end := b.End.Add(buffer)
		if start.Before(winStart) {
			start = winStart
		}
		if end.After(winEnd) {
			end = winEnd
		}
		if start.Before(end) {
			out = append(out, models.BusyInterval{Start: start, End: end})
		}
	}
	return out
}

// freeGaps computes the complement of the merged busy intervals within the
// window.
func freeGaps(merged []models.BusyInterval, winStart, winEnd time.Time) []models.BusyInterval {
	var gaps []models.BusyInterval
	cursor := winStart
	for _, b := range merged {
		if b.Start.After(cursor) {
			gaps = append(gaps, models.BusyInterval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(winEnd) {
		gaps = append(gaps, models.BusyInterval{Start: cursor, End: winEnd})
	}
	return gaps
}

// slotsInGap packs slots of exactly duration length back-to-back on a grid
// anchored at the gap start. When now falls past the gap start, generation
// resumes at the next duration boundary on that grid, so slots already in
// the past are excluded.
func slotsInGap(gapStart, gapEnd time.Time, duration time.Duration, now time.Time) []models.Slot {
	start := gapStart
	if now.After(start) {
		elapsed := now.Sub(start)
		steps := elapsed / duration
		if elapsed%duration != 0 {
			steps++
		}
		start = start.Add(steps * duration)
	}

	var slots []models.Slot
	for !start.Add(duration).After(gapEnd) {
		slots = append(slots, models.Slot{Start: start, End: start.Add(duration)})
		start = start.Add(duration)
	}
	return slots
}
