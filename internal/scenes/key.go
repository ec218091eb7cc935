package scenes

import (
	"sort"
	"strconv"
	"strings"

	"github.com/homeflux/analytics/internal/models"
)

// comboKey is the canonical identity of a set of devices observed together
// in a time window: the sorted, deduplicated device IDs joined in decimal
// with a comma. The encoding is unambiguous because IDs are integers and
// the separator is not a digit.
type comboKey string

func makeComboKey(ids []int64) comboKey {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return comboKey(strings.Join(parts, ","))
}

// distinctSortedIDs extracts the deduplicated device IDs of a window's
// events in ascending order.
func distinctSortedIDs(events []models.OperateEvent) []int64 {
	seen := make(map[int64]bool, len(events))
	var ids []int64
	for _, ev := range events {
		if !seen[ev.DeviceID] {
			seen[ev.DeviceID] = true
			ids = append(ids, ev.DeviceID)
		}
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	return ids
}
