package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmdacli/internal/errors"
)

func TestGroupByMeanAndCount(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("state", []string{"WV", "WV", "WV", "MD"}, nil),
		NewFloatColumn("rate_spread", []float64{5.0, 1.0, 0, 2.0}, []bool{true, true, false, true}),
	)

	got, err := GroupBy(tbl, []string{"state"}, []Agg{
		{Name: "mean_spread", Col: "rate_spread", Reducer: Mean},
		{Name: "count_spread", Col: "rate_spread", Reducer: Count},
		{Name: "sum_spread", Col: "rate_spread", Reducer: Sum},
	})
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())

	// First-seen key order: WV before MD.
	state, _ := got.Column("state")
	mean, _ := got.Column("mean_spread")
	count, _ := got.Column("count_spread")
	sum, _ := got.Column("sum_spread")

	assert.Equal(t, "WV", state.Value(0).Str())
	assert.InDelta(t, 3.0, mean.Value(0).Float(), 1e-9) // mean of 5.0 and 1.0, null excluded
	assert.Equal(t, int64(2), count.Value(0).Int())
	assert.InDelta(t, 6.0, sum.Value(0).Float(), 1e-9)

	assert.Equal(t, "MD", state.Value(1).Str())
	assert.InDelta(t, 2.0, mean.Value(1).Float(), 1e-9)
	assert.Equal(t, int64(1), count.Value(1).Int())
}

func TestGroupByEmptyGroupMeanIsMissing(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("state", []string{"WV", "WV"}, nil),
		NewFloatColumn("rate_spread", []float64{0, 0}, []bool{false, false}),
	)

	got, err := GroupBy(tbl, []string{"state"}, []Agg{
		{Name: "mean_spread", Col: "rate_spread", Reducer: Mean},
		{Name: "sum_spread", Col: "rate_spread", Reducer: Sum},
		{Name: "count_spread", Col: "rate_spread", Reducer: Count},
	})
	require.NoError(t, err)
	require.Equal(t, 1, got.NumRows())

	mean, _ := got.Column("mean_spread")
	sum, _ := got.Column("sum_spread")
	count, _ := got.Column("count_spread")

	assert.True(t, mean.Value(0).IsNull(), "mean of empty group must be missing, not zero")
	assert.True(t, sum.Value(0).IsNull())
	assert.Equal(t, int64(0), count.Value(0).Int())
}

// Conservation: the per-group non-missing counts sum to the ungrouped
// non-missing count over rows with non-missing keys.
func TestGroupByCountConservation(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("state", []string{"WV", "MD", "WV", "TX", "MD", ""}, []bool{true, true, true, true, true, false}),
		NewFloatColumn("rate_spread", []float64{5, 1, 0, 2, 3, 9}, []bool{true, true, false, true, true, true}),
	)

	got, err := GroupBy(tbl, []string{"state"}, []Agg{
		{Name: "n", Col: "rate_spread", Reducer: Count},
	})
	require.NoError(t, err)

	n, _ := got.Column("n")
	var total int64
	for i := 0; i < got.NumRows(); i++ {
		total += n.Value(i).Int()
	}

	// Rows with a valid state and a valid spread: rows 0, 1, 3, 4.
	// Row 5 has a spread but a missing key and is excluded.
	assert.Equal(t, int64(4), total)
}

func TestGroupByKeepMissingKeys(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("state", []string{"WV", ""}, []bool{true, false}),
		NewFloatColumn("rate_spread", []float64{5, 9}, nil),
	)

	got, err := GroupBy(tbl, []string{"state"},
		[]Agg{{Name: "n", Col: "rate_spread", Reducer: Count}},
		GroupOptions{KeepMissingKeys: true})
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())

	state, _ := got.Column("state")
	assert.True(t, state.Value(1).IsNull())
}

func TestGroupByMultipleKeys(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("state", []string{"WV", "WV", "WV"}, nil),
		NewIntColumn("race", []int64{4, 9, 4}, nil),
		NewFloatColumn("rate_spread", []float64{5.0, 1.0, 3.0}, nil),
	)

	got, err := GroupBy(tbl, []string{"state", "race"}, []Agg{
		{Name: "mean_spread", Col: "rate_spread", Reducer: Mean},
	})
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())

	race, _ := got.Column("race")
	mean, _ := got.Column("mean_spread")
	assert.Equal(t, int64(4), race.Value(0).Int())
	assert.InDelta(t, 4.0, mean.Value(0).Float(), 1e-9)
	assert.Equal(t, int64(9), race.Value(1).Int())
	assert.InDelta(t, 1.0, mean.Value(1).Float(), 1e-9)
}

// Distinct key tuples must stay distinct even when the key values
// contain arbitrary bytes: ("a\x1fb","c") and ("a","b\x1fc") are two
// groups, not one.
func TestGroupByKeysWithArbitraryBytes(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("k1", []string{"a\x1fb", "a"}, nil),
		NewStringColumn("k2", []string{"c", "b\x1fc"}, nil),
		NewFloatColumn("x", []float64{1, 2}, nil),
	)

	got, err := GroupBy(tbl, []string{"k1", "k2"}, []Agg{
		{Name: "n", Col: "x", Reducer: Count},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())
}

// A missing key is its own bucket, distinct from every literal value,
// including the strings "NA" and "\x00".
func TestGroupByNullKeyDistinctFromLiterals(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("k", []string{"NA", "\x00", ""}, []bool{true, true, false}),
		NewFloatColumn("x", []float64{1, 2, 3}, nil),
	)

	got, err := GroupBy(tbl, []string{"k"},
		[]Agg{{Name: "n", Col: "x", Reducer: Count}},
		GroupOptions{KeepMissingKeys: true})
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumRows())
}

// Count is kind-agnostic: it counts non-missing cells of a string
// column instead of silently reporting zero.
func TestGroupByCountStringColumn(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("g", []string{"x", "x", "y"}, nil),
		NewStringColumn("s", []string{"hello", "world", ""}, []bool{true, true, false}),
	)

	got, err := GroupBy(tbl, []string{"g"}, []Agg{
		{Name: "n", Col: "s", Reducer: Count},
	})
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())

	n, _ := got.Column("n")
	assert.Equal(t, int64(2), n.Value(0).Int())
	assert.Equal(t, int64(0), n.Value(1).Int())
}

// Mean and Sum over a string column are schema errors, reported before
// any row is processed.
func TestGroupByNumericReducerRejectsStringColumn(t *testing.T) {
	tbl := MustNew(
		NewStringColumn("g", []string{"x"}, nil),
		NewStringColumn("s", []string{"hello"}, nil),
	)

	for _, reducer := range []Reducer{Mean, Sum} {
		_, err := GroupBy(tbl, []string{"g"}, []Agg{
			{Name: "out", Col: "s", Reducer: reducer},
		})
		require.Error(t, err, reducer.String())
		assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
	}
}

func TestGroupByErrors(t *testing.T) {
	tbl := MustNew(NewStringColumn("state", []string{"WV"}, nil))

	_, err := GroupBy(tbl, []string{"county"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))

	_, err = GroupBy(tbl, []string{"state"}, []Agg{
		{Name: "n", Col: "state", Reducer: Count},
		{Name: "n", Col: "state", Reducer: Count},
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeCollision))

	_, err = GroupBy(tbl, nil, nil)
	require.Error(t, err)
}
