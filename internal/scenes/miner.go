// Package scenes mines recurring device co-occurrence patterns out of
// operate-event history and turns them into automation scene candidates.
//
// Events are grouped into fixed 10-minute windows aligned to the Unix
// epoch. A window touching two or more distinct devices contributes one
// occurrence to the combination of its device IDs; combinations recurring
// often enough become recommendations. Two pattern shapes are mined:
// sequential (the first operation of a window triggering the second) and
// simultaneous (several devices switched the same way within one window).
package scenes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/homeflux/analytics/internal/models"
)

const (
	// windowSeconds is the width of the non-overlapping mining windows.
	windowSeconds = 600

	// sequentialMinOccurrences is how often a device combination must
	// recur before a trigger/target scene is proposed.
	sequentialMinOccurrences = 2

	// simultaneousMinOccurrences is how often a same-action combination
	// must recur before a one-tap scene is proposed.
	simultaneousMinOccurrences = 3

	// maxTitleDevices caps how many device names a one-tap scene title
	// spells out.
	maxTitleDevices = 3
)

type pattern struct {
	count    int
	exemplar []models.OperateEvent
}

// Mine analyzes operate events (expected pre-filtered to the recent past
// and sorted ascending by time) against the device roster and returns
// sequential recommendations followed by simultaneous ones. Candidates
// referencing devices missing from the roster are dropped individually.
func Mine(records []models.OperateEvent, devices []models.Device) []models.SceneRecommendation {
	if len(records) == 0 || len(devices) == 0 {
		return nil
	}

	roster := make(map[int64]models.Device, len(devices))
	for _, d := range devices {
		roster[d.ID] = d
	}

	windows := make(map[int64][]models.OperateEvent)
	for _, r := range records {
		bucket := r.Time.Unix() / windowSeconds
		windows[bucket] = append(windows[bucket], r)
	}
	buckets := make([]int64, 0, len(windows))
	for b := range windows {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, k int) bool { return buckets[i] < buckets[k] })

	sequential := make(map[comboKey]*pattern)
	simOpen := make(map[comboKey]*pattern)
	simClose := make(map[comboKey]*pattern)

	for _, b := range buckets {
		group := windows[b]
		if len(group) < 2 {
			continue
		}
		ids := distinctSortedIDs(group)
		if len(ids) < 2 {
			continue
		}
		record(sequential, makeComboKey(ids), group)

		var opens, closes []models.OperateEvent
		for _, ev := range group {
			switch ev.Action {
			case models.ActionOpen:
				opens = append(opens, ev)
			case models.ActionClose:
				closes = append(closes, ev)
			}
		}
		if openIDs := distinctSortedIDs(opens); len(openIDs) > 1 {
			record(simOpen, makeComboKey(openIDs), opens)
		}
		if closeIDs := distinctSortedIDs(closes); len(closeIDs) > 1 {
			record(simClose, makeComboKey(closeIDs), closes)
		}
	}

	var out []models.SceneRecommendation
	for _, p := range orderedPatterns(sequential) {
		if p.count < sequentialMinOccurrences {
			continue
		}
		if rec, ok := sequentialScene(p.exemplar, roster); ok {
			out = append(out, rec)
		}
	}
	for _, p := range orderedPatterns(simOpen) {
		if p.count < simultaneousMinOccurrences {
			continue
		}
		if rec, ok := simultaneousScene(p.exemplar, roster, models.ActionOpen); ok {
			out = append(out, rec)
		}
	}
	for _, p := range orderedPatterns(simClose) {
		if p.count < simultaneousMinOccurrences {
			continue
		}
		if rec, ok := simultaneousScene(p.exemplar, roster, models.ActionClose); ok {
			out = append(out, rec)
		}
	}
	return out
}

// record counts one occurrence of key, keeping the latest window's events
// as the exemplar.
func record(counts map[comboKey]*pattern, key comboKey, events []models.OperateEvent) {
	p, ok := counts[key]
	if !ok {
		p = &pattern{}
		counts[key] = p
	}
	p.count++
	p.exemplar = events
}

// orderedPatterns walks a count map in ascending key order so the emitted
// recommendation list is a pure function of the input.
func orderedPatterns(counts map[comboKey]*pattern) []*pattern {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	ordered := make([]*pattern, len(keys))
	for i, k := range keys {
		ordered[i] = counts[comboKey(k)]
	}
	return ordered
}

func sequentialScene(exemplar []models.OperateEvent, roster map[int64]models.Device) (models.SceneRecommendation, bool) {
	if len(exemplar) < 2 {
		return models.SceneRecommendation{}, false
	}
	ordered := make([]models.OperateEvent, len(exemplar))
	copy(ordered, exemplar)
	sort.SliceStable(ordered, func(i, k int) bool {
		return ordered[i].Time.Before(ordered[k].Time)
	})

	first, second := ordered[0], ordered[1]
	if first.DeviceID == second.DeviceID {
		return models.SceneRecommendation{}, false
	}
	trigger, ok := roster[first.DeviceID]
	if !ok {
		return models.SceneRecommendation{}, false
	}
	target, ok := roster[second.DeviceID]
	if !ok {
		return models.SceneRecommendation{}, false
	}

	return models.SceneRecommendation{
		Type: models.SceneSequential,
		Name: fmt.Sprintf("When %s turns %s, turn %s %s",
			trigger.Name, actionWord(first.Action), target.Name, actionWord(second.Action)),
		Description: fmt.Sprintf(
			"You often switch %s %s shortly after switching %s %s. This scene automates the second step.",
			target.Name, actionWord(second.Action), trigger.Name, actionWord(first.Action)),
		TriggerDeviceID:   trigger.ID,
		TriggerDeviceName: trigger.Name,
		TriggerAction:     first.Action,
		TargetDeviceID:    target.ID,
		TargetDeviceName:  target.Name,
		TargetAction:      second.Action,
	}, true
}

func simultaneousScene(exemplar []models.OperateEvent, roster map[int64]models.Device, action models.Action) (models.SceneRecommendation, bool) {
	ids := distinctSortedIDs(exemplar)
	var names []string
	for _, id := range ids {
		if dev, ok := roster[id]; ok {
			names = append(names, dev.Name)
		}
	}
	if len(names) < 2 {
		return models.SceneRecommendation{}, false
	}

	title := names
	if len(title) > maxTitleDevices {
		title = title[:maxTitleDevices]
	}
	return models.SceneRecommendation{
		Type: models.SceneSimultaneous,
		Name: fmt.Sprintf("One tap %s: %s", actionWord(action), strings.Join(title, ", ")),
		Description: fmt.Sprintf(
			"These devices are frequently switched %s together: %s. A single scene can control them at once.",
			actionWord(action), strings.Join(names, ", ")),
		DeviceIDs:   ids,
		DeviceNames: names,
		Action:      action,
	}, true
}

func actionWord(a models.Action) string {
	if a == models.ActionOpen {
		return "on"
	}
	return "off"
}
