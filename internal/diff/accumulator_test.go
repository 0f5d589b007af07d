package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name string
		in   []Record
		want []Record
	}{
		{
			name: "empty",
			in:   nil,
			want: []Record{},
		},
		{
			name: "touching same symbol merged",
			in:   []Record{{'-', 10, 5}, {'-', 15, 3}},
			want: []Record{{'-', 10, 8}},
		},
		{
			name: "touching different symbols kept",
			in:   []Record{{'A', 10, 1}, {'C', 11, 1}},
			want: []Record{{'A', 10, 1}, {'C', 11, 1}},
		},
		{
			name: "gap kept",
			in:   []Record{{'-', 10, 5}, {'-', 16, 3}},
			want: []Record{{'-', 10, 5}, {'-', 16, 3}},
		},
		{
			name: "snp inside masked span absorbed",
			in:   []Record{{'-', 10, 5}, {'A', 12, 1}},
			want: []Record{{'-', 10, 5}},
		},
		{
			name: "masked span over called run carves it",
			in:   []Record{{'A', 10, 1}, {'A', 11, 1}, {'A', 12, 1}, {'-', 11, 5}},
			want: []Record{{'A', 10, 1}, {'-', 11, 5}},
		},
		{
			name: "conflicting calls at same position",
			in:   []Record{{'G', 10, 1}, {'T', 10, 1}},
			want: []Record{{'-', 10, 1}},
		},
		{
			name: "conflict coalesces with preceding mask",
			in:   []Record{{'-', 5, 5}, {'G', 10, 1}, {'T', 10, 1}},
			want: []Record{{'-', 5, 6}},
		},
		{
			name: "masked record extending past called run",
			in:   []Record{{'A', 10, 1}, {'-', 10, 4}},
			want: []Record{{'-', 10, 4}},
		},
		{
			name: "conflict inside a longer run keeps both tails",
			in:   []Record{{'A', 10, 5}, {'C', 12, 1}},
			want: []Record{{'A', 10, 2}, {'-', 12, 1}, {'A', 13, 2}},
		},
		{
			name: "reopened mask absorbs conflict and keeps the longer tail",
			in:   []Record{{'-', 5, 5}, {'G', 10, 3}, {'T', 10, 1}},
			want: []Record{{'-', 5, 6}, {'G', 11, 2}},
		},
		{
			name: "conflict tail from the later record",
			in:   []Record{{'G', 10, 1}, {'T', 10, 3}},
			want: []Record{{'-', 10, 1}, {'T', 11, 2}},
		},
		{
			name: "overlapping masks merged",
			in:   []Record{{'-', 10, 5}, {'-', 12, 10}},
			want: []Record{{'-', 10, 12}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coalesce(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, Validate(got))
		})
	}
}

func TestCoalesce_Unsorted(t *testing.T) {
	_, err := Coalesce([]Record{{'A', 20, 1}, {'C', 10, 1}})
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestCoalesce_EmptySpan(t *testing.T) {
	_, err := Coalesce([]Record{{'A', 20, 0}})
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]Record{{'A', 1, 1}, {'-', 2, 3}, {'C', 5, 1}}))
	assert.ErrorIs(t, Validate([]Record{{'A', 1, 2}, {'C', 2, 1}}), ErrInvariant)
	assert.ErrorIs(t, Validate([]Record{{'A', 0, 1}}), ErrInvariant)
	assert.ErrorIs(t, Validate([]Record{{'A', 3, -1}}), ErrInvariant)
}

func TestDiff_Covered(t *testing.T) {
	d := &Diff{Sample: "s", Records: []Record{{'-', 1, 10}, {'A', 20, 1}, {'-', 30, 5}}}
	assert.Equal(t, int64(15), d.Covered(Masked))
	assert.Equal(t, int64(1), d.Covered('A'))
	assert.Equal(t, int64(0), d.Covered('C'))
}
