package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmdacli/internal/errors"
)

// The end-to-end scenario from the notebook: three WV loans, one with
// a missing spread, grouped by (state, race) and widened by race.
func TestGroupThenPivotWider(t *testing.T) {
	tbl := MustNew(
		NewIntColumn("race", []int64{4, 9, 4}, nil),
		NewIntColumn("ethnicity", []int64{5, 5, 5}, nil),
		NewStringColumn("state", []string{"WV", "WV", "WV"}, nil),
		NewFloatColumn("rate_spread", []float64{5.0, 1.0, 0}, []bool{true, true, false}),
	)

	grouped, err := GroupBy(tbl, []string{"state", "race"}, []Agg{
		{Name: "mean_spread", Col: "rate_spread", Reducer: Mean},
		{Name: "count_spread", Col: "rate_spread", Reducer: Count},
	})
	require.NoError(t, err)

	wide, err := PivotWider(grouped, "race", "mean_spread", "count_spread")
	require.NoError(t, err)

	require.Equal(t, 1, wide.NumRows())
	state, _ := wide.Column("state")
	assert.Equal(t, "WV", state.Value(0).Str())

	mean4, err := wide.Column("mean_spread_4")
	require.NoError(t, err)
	count4, err := wide.Column("count_spread_4")
	require.NoError(t, err)
	mean9, err := wide.Column("mean_spread_9")
	require.NoError(t, err)
	count9, err := wide.Column("count_spread_9")
	require.NoError(t, err)

	assert.InDelta(t, 5.0, mean4.Value(0).Float(), 1e-9)
	assert.Equal(t, int64(1), count4.Value(0).Int())
	assert.InDelta(t, 1.0, mean9.Value(0).Float(), 1e-9)
	assert.Equal(t, int64(1), count9.Value(0).Int())
}

func TestPivotWiderAbsentCombinationsAreMissing(t *testing.T) {
	// MD has no race-9 row; the wide cell must be missing, the MD row
	// must not be dropped.
	tbl := MustNew(
		NewStringColumn("state", []string{"WV", "WV", "MD"}, nil),
		NewIntColumn("race", []int64{4, 9, 4}, nil),
		NewFloatColumn("mean_spread", []float64{5.0, 1.0, 2.0}, nil),
	)

	wide, err := PivotWider(tbl, "race", "mean_spread")
	require.NoError(t, err)
	require.Equal(t, 2, wide.NumRows())

	nine, err := wide.Column("mean_spread_9")
	require.NoError(t, err)
	assert.False(t, nine.Value(0).IsNull())
	assert.True(t, nine.Value(1).IsNull())
}

func TestPivotWiderCollision(t *testing.T) {
	// A generated name clashing with a residual key column.
	clash := MustNew(
		NewStringColumn("state", []string{"WV"}, nil),
		NewFloatColumn("mean_spread_4", []float64{9}, nil),
		NewStringColumn("race", []string{"4"}, nil),
		NewFloatColumn("mean_spread", []float64{1}, nil),
	)
	_, err := PivotWider(clash, "race", "mean_spread")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeCollision))

	// Two distinct (value column, key value) pairs rendering to the
	// same generated name: mean + spread_4 and mean_spread + 4 both
	// produce "mean_spread_4".
	tbl := MustNew(
		NewStringColumn("state", []string{"WV", "WV"}, nil),
		NewStringColumn("race", []string{"4", "spread_4"}, nil),
		NewFloatColumn("mean", []float64{1, 2}, nil),
		NewFloatColumn("mean_spread", []float64{1, 2}, nil),
	)
	_, err = PivotWider(tbl, "race", "mean", "mean_spread")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeCollision))
}

func TestPivotRoundTrip(t *testing.T) {
	long := MustNew(
		NewStringColumn("state", []string{"WV", "WV", "MD"}, nil),
		NewStringColumn("race", []string{"Black", "White", "Black"}, nil),
		NewFloatColumn("mean_spread", []float64{5.0, 1.0, 2.0}, nil),
	)

	wide, err := PivotWider(long, "race", "mean_spread")
	require.NoError(t, err)

	back, err := PivotLonger(wide, []string{"state"}, "race", "mean_spread")
	require.NoError(t, err)

	// Round-trips modulo row order: compare as a set.
	require.Equal(t, long.NumRows(), back.NumRows())
	type cell struct {
		state, race string
		spread      float64
	}
	want := map[cell]bool{
		{"WV", "Black", 5.0}: true,
		{"WV", "White", 1.0}: true,
		{"MD", "Black", 2.0}: true,
	}
	state, _ := back.Column("state")
	race, _ := back.Column("race")
	spread, _ := back.Column("mean_spread")
	for i := 0; i < back.NumRows(); i++ {
		c := cell{state.Value(i).Str(), race.Value(i).Str(), spread.Value(i).Float()}
		assert.True(t, want[c], "unexpected row %+v", c)
		delete(want, c)
	}
	assert.Empty(t, want)
}

func TestPivotWiderUnknownColumn(t *testing.T) {
	tbl := MustNew(NewStringColumn("state", []string{"WV"}, nil))

	_, err := PivotWider(tbl, "race", "mean_spread")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}
