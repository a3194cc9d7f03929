package draft

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/siteloom/internal/schedule"
)

func problems(t *testing.T, err error) []FieldError {
	t.Helper()
	var de *DraftError
	require.True(t, errors.As(err, &de), "expected *DraftError, got %v", err)
	return de.Problems
}

func TestParse_ObjectWithActivities(t *testing.T) {
	data := []byte(`{
	  "activities": [
	    {"id": 1, "name": "Excavation", "durationDays": 5, "predecessorIds": []},
	    {"id": 2, "name": "Footings", "durationDays": 3, "predecessorIds": [1], "relationType": "SS", "lagDays": 2,
	     "float": 99, "isCritical": false, "earlyStart": 40},
	    {"id": "roof", "durationDays": 0, "predecessorIds": ["2"], "responsible": "Crew B"}
	  ],
	  "alerts": ["rain expected in week 2"]
	}`)

	d, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, d.Activities, 3)

	b := d.Activities[1]
	assert.Equal(t, "2", b.ID)
	assert.Equal(t, []string{"1"}, b.PredecessorIDs)
	assert.Equal(t, schedule.StartToStart, b.RelationType)
	assert.Equal(t, 2, b.LagDays)
	assert.Zero(t, b.Float)
	assert.Zero(t, b.EarlyStart)
	assert.ElementsMatch(t, []string{"2.float", "2.isCritical", "2.earlyStart"}, d.Ignored)

	assert.Equal(t, "Crew B", d.Activities[2].Responsible)
	assert.Equal(t, []string{"rain expected in week 2"}, d.Notes)
}

func TestParse_RootArrayAndAliases(t *testing.T) {
	data := []byte(`[
	  {"id": 1, "discriminacao": "Alvenaria", "duracao": 4, "predecessores": [], "tipoRelacao": "FS", "folga_total": 3},
	  {"id": 2, "duracao": 2, "predecessores": [1], "sucessores": []}
	]`)

	d, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, d.Activities, 2)
	assert.Equal(t, "Alvenaria", d.Activities[0].Name)
	assert.Equal(t, 4, d.Activities[0].DurationDays)
	assert.Equal(t, []string{"1.folga_total"}, d.Ignored)
}

func TestParse_MissingFields(t *testing.T) {
	data := []byte(`{"activities": [
	  {"name": "no id", "durationDays": 1, "predecessorIds": []},
	  {"id": 2, "predecessorIds": []},
	  {"id": 3, "durationDays": 1}
	]}`)

	_, err := Parse(data)
	got := problems(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "id", got[0].Field)
	assert.Equal(t, "durationDays", got[1].Field)
	assert.Equal(t, "predecessorIds", got[2].Field)
	assert.Equal(t, "3", got[2].ActivityID)
}

func TestParse_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"negative duration":   `[{"id": 1, "durationDays": -2, "predecessorIds": []}]`,
		"fractional duration": `[{"id": 1, "durationDays": 1.5, "predecessorIds": []}]`,
		"zero id":             `[{"id": 0, "durationDays": 1, "predecessorIds": []}]`,
		"empty id":            `[{"id": "  ", "durationDays": 1, "predecessorIds": []}]`,
		"preds not array":     `[{"id": 1, "durationDays": 1, "predecessorIds": "2"}]`,
		"bad pred id":         `[{"id": 1, "durationDays": 1, "predecessorIds": [true]}]`,
		"bad relation":        `[{"id": 1, "durationDays": 1, "predecessorIds": [], "relationType": "XF"}]`,
		"duplicate ids":       `[{"id": 1, "durationDays": 1, "predecessorIds": []}, {"id": "1", "durationDays": 1, "predecessorIds": []}]`,
		"not an object":       `[42]`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.NotEmpty(t, problems(t, err))
		})
	}
}

func TestParse_BadShape(t *testing.T) {
	_, err := Parse([]byte(`{"activities": `))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"tasks": []}`))
	assert.NotEmpty(t, problems(t, err))

	_, err = Parse([]byte(`{"activities": {"id": 1}}`))
	assert.NotEmpty(t, problems(t, err))
}

func TestAccept_Recomputes(t *testing.T) {
	d, err := Parse([]byte(`[
	  {"id": "A", "durationDays": 5, "predecessorIds": [], "isCritical": false},
	  {"id": "B", "durationDays": 3, "predecessorIds": ["A"]},
	  {"id": "C", "durationDays": 2, "predecessorIds": ["B"], "float": 7}
	]`))
	require.NoError(t, err)

	result, err := Accept(d)
	require.NoError(t, err)
	assert.Equal(t, 10, result.ProjectDuration)
	assert.Equal(t, []string{"A", "B", "C"}, result.CriticalPath)
	for _, a := range result.Activities {
		assert.True(t, a.IsCritical, a.ID)
		assert.Zero(t, a.Float, a.ID)
	}
}

func TestAccept_RejectsCycle(t *testing.T) {
	d, err := Parse([]byte(`[
	  {"id": "A", "durationDays": 5, "predecessorIds": ["B"]},
	  {"id": "B", "durationDays": 3, "predecessorIds": ["A"]}
	]`))
	require.NoError(t, err)

	_, err = Accept(d)
	var cyc *schedule.CyclicDependencyError
	assert.True(t, errors.As(err, &cyc))
	assert.True(t, schedule.IsFatal(err))
}

func TestAccept_RejectsParentCycle(t *testing.T) {
	d, err := Parse([]byte(`[
	  {"id": "A", "durationDays": 5, "predecessorIds": [], "parentId": "B"},
	  {"id": "B", "durationDays": 3, "predecessorIds": [], "parentId": "A"}
	]`))
	require.NoError(t, err)

	_, err = Accept(d)
	var cyc *schedule.CyclicDependencyError
	require.True(t, errors.As(err, &cyc), "got %v", err)
	assert.Equal(t, schedule.CycleParent, cyc.Kind)
}

func TestAccept_PhaseRowIsAggregate(t *testing.T) {
	d, err := Parse([]byte(`[
	  {"id": 1, "name": "Phase", "durationDays": 20, "predecessorIds": []},
	  {"id": 2, "name": "A", "durationDays": 5, "predecessorIds": [], "parentId": 1},
	  {"id": 3, "name": "B", "durationDays": 3, "predecessorIds": [2], "parentId": 1}
	]`))
	require.NoError(t, err)

	result, err := Accept(d)
	require.NoError(t, err)
	assert.Equal(t, 8, result.ProjectDuration)
	assert.Equal(t, []string{"2", "3"}, result.CriticalPath)
	for _, a := range result.Activities {
		assert.True(t, a.IsCritical, a.ID)
		assert.Zero(t, a.Float, a.ID)
	}
	assert.Equal(t, 20, result.Activities[0].DurationDays, "proposed phase duration is kept")
	assert.Equal(t, 8, result.Activities[0].EarlyFinish)
}
