package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmdacli/internal/errors"
)

func TestNewRejectsMismatchedLengths(t *testing.T) {
	_, err := New(
		NewStringColumn("state", []string{"WV", "MD"}, nil),
		NewFloatColumn("rate_spread", []float64{1.0}, nil),
	)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(
		NewStringColumn("state", []string{"WV"}, nil),
		NewStringColumn("state", []string{"MD"}, nil),
	)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestColumnLookup(t *testing.T) {
	tbl := MustNew(NewIntColumn("race", []int64{4, 9}, nil))

	col, err := tbl.Column("race")
	require.NoError(t, err)
	assert.Equal(t, Int, col.Kind())
	assert.Equal(t, 2, col.Len())

	_, err = tbl.Column("ethnicity")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestMissingValues(t *testing.T) {
	col := NewFloatColumn("rate_spread", []float64{5.0, 0}, []bool{true, false})

	assert.False(t, col.IsNull(0))
	assert.True(t, col.IsNull(1))
	assert.True(t, col.Value(1).IsNull())

	// A null never equals anything, not even another null.
	assert.False(t, col.Value(1).Equal(col.Value(1)))
	assert.False(t, col.Value(1).Equal(FloatValue(0)))
}

func TestValueEqualAcrossNumericKinds(t *testing.T) {
	assert.True(t, IntValue(4).Equal(FloatValue(4)))
	assert.False(t, IntValue(4).Equal(StringValue("4")))
}

func TestWithColumnRefusesOverwrite(t *testing.T) {
	tbl := MustNew(NewIntColumn("race", []int64{4}, nil))
	_, err := tbl.withColumn(NewIntColumn("race", []int64{9}, nil))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}
