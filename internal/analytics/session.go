package analytics

import (
	"sort"
	"time"

	"github.com/homeflux/analytics/internal/models"
)

// PairingMode selects how online/offline events are matched into sessions.
type PairingMode string

const (
	// PairGreedy is the forward, one-pass, nearest-next-offline matching.
	// It does not handle out-of-order corrections, duplicate online events
	// without an intervening offline, or device clock skew; an offline event
	// inspected for one online event is consumed and never revisited.
	PairGreedy PairingMode = "greedy"

	// PairStrict walks the merged event log as a state machine, opening a
	// session on an offline->online transition and closing it on the next
	// online->offline. Events that repeat the current state are rejected.
	PairStrict PairingMode = "strict"
)

// Reconstructor turns a device's raw online/offline log into sessions.
// The zero value uses greedy pairing.
type Reconstructor struct {
	Mode PairingMode
}

// Sessions reconstructs the runtime sessions for a single device's events.
// Input order does not matter. Online events with no matching offline event
// are dropped; this is the variant aggregate statistics are built from.
func (r Reconstructor) Sessions(events []models.DeviceEvent) []models.Session {
	if r.Mode == PairStrict {
		return r.strictSessions(events, time.Time{}, false)
	}
	return r.greedySessions(events, time.Time{}, false)
}

// Timeline reconstructs sessions for a per-device history view. Online
// events with no matching offline event are closed at now, representing a
// device that is still running.
func (r Reconstructor) Timeline(events []models.DeviceEvent, now time.Time) []models.Session {
	if r.Mode == PairStrict {
		return r.strictSessions(events, now, true)
	}
	return r.greedySessions(events, now, true)
}

func (r Reconstructor) greedySessions(events []models.DeviceEvent, now time.Time, closeOpen bool) []models.Session {
	var onlines, offlines []models.DeviceEvent
	for _, ev := range events {
		switch ev.Kind {
		case models.KindOnline:
			onlines = append(onlines, ev)
		case models.KindOffline:
			offlines = append(offlines, ev)
		}
	}
	sortByTime(onlines)
	sortByTime(offlines)

	var sessions []models.Session
	j := 0
	for _, on := range onlines {
		var end time.Time
		matched := false
		for j < len(offlines) {
			candidate := offlines[j].Time
			j++
			if candidate.After(on.Time) {
				end = candidate
				matched = true
				break
			}
		}
		if !matched {
			if !closeOpen {
				continue
			}
			end = now
		}
		sessions = append(sessions, newSession(on.DeviceID, on.Time, end))
	}
	return sessions
}

func (r Reconstructor) strictSessions(events []models.DeviceEvent, now time.Time, closeOpen bool) []models.Session {
	merged := make([]models.DeviceEvent, len(events))
	copy(merged, events)
	sortByTime(merged)

	var sessions []models.Session
	var openAt time.Time
	var openID int64
	running := false
	for _, ev := range merged {
		switch ev.Kind {
		case models.KindOnline:
			if running {
				continue // repeated online without an offline in between
			}
			running = true
			openAt = ev.Time
			openID = ev.DeviceID
		case models.KindOffline:
			if !running {
				continue
			}
			running = false
			sessions = append(sessions, newSession(openID, openAt, ev.Time))
		}
	}
	if running && closeOpen {
		sessions = append(sessions, newSession(openID, openAt, now))
	}
	return sessions
}

func newSession(deviceID int64, start, end time.Time) models.Session {
	return models.Session{
		DeviceID:      deviceID,
		Start:         start,
		End:           end,
		DurationHours: end.Sub(start).Hours(),
	}
}

// sortByTime orders events ascending by timestamp, keeping arrival order
// for equal timestamps.
func sortByTime(events []models.DeviceEvent) {
	sort.SliceStable(events, func(i, k int) bool {
		return events[i].Time.Before(events[k].Time)
	})
}

// groupEventsByDevice splits a mixed event list into per-device lists,
// preserving relative order.
func groupEventsByDevice(events []models.DeviceEvent) map[int64][]models.DeviceEvent {
	grouped := make(map[int64][]models.DeviceEvent)
	for _, ev := range events {
		grouped[ev.DeviceID] = append(grouped[ev.DeviceID], ev)
	}
	return grouped
}
