package scenes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeflux/analytics/internal/models"
)

var roster = []models.Device{
	{ID: 1, Name: "Hall Light"},
	{ID: 2, Name: "TV"},
	{ID: 3, Name: "Speaker"},
}

func op(deviceID int64, action models.Action, at time.Time) models.OperateEvent {
	return models.OperateEvent{DeviceID: deviceID, Time: at, Action: action}
}

// windowStart returns a timestamp aligned to the start of a distinct
// mining window, spaced far enough apart that windows never overlap.
func windowStart(n int) time.Time {
	return time.Unix(int64(n)*3600, 0).UTC()
}

func TestMakeComboKey(t *testing.T) {
	assert.Equal(t, comboKey("1,2,12"), makeComboKey([]int64{1, 2, 12}))
	assert.Equal(t, comboKey("7"), makeComboKey([]int64{7}))
	assert.Equal(t, comboKey(""), makeComboKey(nil))
}

func TestDistinctSortedIDs(t *testing.T) {
	now := time.Now()
	events := []models.OperateEvent{
		op(3, models.ActionOpen, now),
		op(1, models.ActionOpen, now),
		op(3, models.ActionClose, now),
		op(2, models.ActionOpen, now),
	}
	assert.Equal(t, []int64{1, 2, 3}, distinctSortedIDs(events))
}

func TestMine_SequentialPattern(t *testing.T) {
	var records []models.OperateEvent
	// The same ordered pair in two separate windows reaches the
	// sequential threshold.
	for n := 0; n < 2; n++ {
		start := windowStart(n)
		records = append(records,
			op(1, models.ActionOpen, start),
			op(2, models.ActionOpen, start.Add(time.Minute)),
		)
	}

	recs := Mine(records, roster)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, models.SceneSequential, rec.Type)
	assert.Equal(t, int64(1), rec.TriggerDeviceID)
	assert.Equal(t, "Hall Light", rec.TriggerDeviceName)
	assert.Equal(t, models.ActionOpen, rec.TriggerAction)
	assert.Equal(t, int64(2), rec.TargetDeviceID)
	assert.Equal(t, models.ActionOpen, rec.TargetAction)
	assert.Equal(t, "When Hall Light turns on, turn TV on", rec.Name)
}

func TestMine_SingleOccurrenceIsNotEnough(t *testing.T) {
	start := windowStart(0)
	records := []models.OperateEvent{
		op(1, models.ActionOpen, start),
		op(2, models.ActionOpen, start.Add(time.Minute)),
	}
	assert.Empty(t, Mine(records, roster))
}

func TestMine_SameDeviceExemplarRejected(t *testing.T) {
	// The combination {1,2} recurs, but in the exemplar window the first
	// two operations are on the same device, so no trigger/target pair
	// can be formed.
	var records []models.OperateEvent
	for n := 0; n < 2; n++ {
		start := windowStart(n)
		records = append(records,
			op(1, models.ActionOpen, start),
			op(1, models.ActionClose, start.Add(time.Minute)),
			op(2, models.ActionOpen, start.Add(2*time.Minute)),
		)
	}
	assert.Empty(t, Mine(records, roster))
}

func TestMine_SimultaneousPattern(t *testing.T) {
	var records []models.OperateEvent
	// Three windows with the same trio opened together; the sequential
	// pattern for the combination is emitted too.
	for n := 0; n < 3; n++ {
		start := windowStart(n)
		records = append(records,
			op(1, models.ActionOpen, start),
			op(2, models.ActionOpen, start.Add(time.Minute)),
			op(3, models.ActionOpen, start.Add(2*time.Minute)),
		)
	}

	recs := Mine(records, roster)
	require.Len(t, recs, 2)

	assert.Equal(t, models.SceneSequential, recs[0].Type)

	sim := recs[1]
	assert.Equal(t, models.SceneSimultaneous, sim.Type)
	assert.Equal(t, []int64{1, 2, 3}, sim.DeviceIDs)
	assert.Equal(t, []string{"Hall Light", "TV", "Speaker"}, sim.DeviceNames)
	assert.Equal(t, models.ActionOpen, sim.Action)
	assert.Equal(t, "One tap on: Hall Light, TV, Speaker", sim.Name)
}

func TestMine_SimultaneousNeedsThreeOccurrences(t *testing.T) {
	var records []models.OperateEvent
	for n := 0; n < 2; n++ {
		start := windowStart(n)
		records = append(records,
			op(1, models.ActionClose, start),
			op(2, models.ActionClose, start.Add(time.Minute)),
		)
	}

	recs := Mine(records, roster)
	// Two occurrences satisfy the sequential threshold only.
	require.Len(t, recs, 1)
	assert.Equal(t, models.SceneSequential, recs[0].Type)
}

func TestMine_OpensAndClosesCountedSeparately(t *testing.T) {
	var records []models.OperateEvent
	for n := 0; n < 3; n++ {
		start := windowStart(n)
		records = append(records,
			op(1, models.ActionOpen, start),
			op(2, models.ActionOpen, start.Add(time.Minute)),
			op(1, models.ActionClose, start.Add(5*time.Minute)),
			op(3, models.ActionClose, start.Add(6*time.Minute)),
		)
	}

	recs := Mine(records, roster)

	var opens, closes []models.SceneRecommendation
	for _, r := range recs {
		if r.Type != models.SceneSimultaneous {
			continue
		}
		if r.Action == models.ActionOpen {
			opens = append(opens, r)
		} else {
			closes = append(closes, r)
		}
	}
	require.Len(t, opens, 1)
	require.Len(t, closes, 1)
	assert.Equal(t, []int64{1, 2}, opens[0].DeviceIDs)
	assert.Equal(t, []int64{1, 3}, closes[0].DeviceIDs)
}

func TestMine_UnresolvedDevicesDropped(t *testing.T) {
	var records []models.OperateEvent
	for n := 0; n < 2; n++ {
		start := windowStart(n)
		records = append(records,
			op(99, models.ActionOpen, start), // not in the roster
			op(2, models.ActionOpen, start.Add(time.Minute)),
		)
	}
	assert.Empty(t, Mine(records, roster))
}

func TestMine_EmptyInputs(t *testing.T) {
	now := time.Now()
	assert.Nil(t, Mine(nil, roster))
	assert.Nil(t, Mine([]models.OperateEvent{op(1, models.ActionOpen, now)}, nil))
}

func TestMine_Deterministic(t *testing.T) {
	var records []models.OperateEvent
	for n := 0; n < 3; n++ {
		start := windowStart(n)
		records = append(records,
			op(1, models.ActionOpen, start),
			op(2, models.ActionOpen, start.Add(time.Minute)),
			op(3, models.ActionOpen, start.Add(90*time.Second)),
		)
	}
	for n := 10; n < 13; n++ {
		start := windowStart(n)
		records = append(records,
			op(2, models.ActionClose, start),
			op(3, models.ActionClose, start.Add(time.Minute)),
		)
	}

	first := Mine(records, roster)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Mine(records, roster))
	}
}
