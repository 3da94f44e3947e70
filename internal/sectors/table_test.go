package sectors

import (
	"testing"

	"github.com/joshuapare/vpxkit/internal/format"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	// 0 -> 3 -> 1 -> end, 2 free, 4 -> end
	tbl := NewTable([]int32{3, format.EndOfChain, format.FreeSect, 1, format.EndOfChain})

	chain, err := tbl.Chain(0)
	require.NoError(t, err)
	require.Equal(t, []int32{0, 3, 1}, chain)

	chain, err = tbl.Chain(4)
	require.NoError(t, err)
	require.Equal(t, []int32{4}, chain)

	chain, err = tbl.Chain(format.EndOfChain)
	require.NoError(t, err)
	require.Empty(t, chain)
}

func TestChainSectorZeroIsValid(t *testing.T) {
	tbl := NewTable([]int32{format.EndOfChain, 0})
	chain, err := tbl.Chain(1)
	require.NoError(t, err)
	require.Equal(t, []int32{1, 0}, chain)
}

func TestChainBadLinks(t *testing.T) {
	tests := []struct {
		name  string
		next  []int32
		start int32
		want  error
	}{
		{"start past table", []int32{format.EndOfChain}, 5, ErrBadLink},
		{"start free sentinel", []int32{format.EndOfChain}, format.FreeSect, ErrBadLink},
		{"hop past table", []int32{9}, 0, ErrBadLink},
		{"hop into free", []int32{format.FreeSect}, 0, ErrBadLink},
		{"hop into fat sentinel", []int32{format.FATSect}, 0, ErrBadLink},
		{"self loop", []int32{0}, 0, ErrCycle},
		{"two cycle", []int32{1, 0}, 0, ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.next).Chain(tt.start)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNext(t *testing.T) {
	tbl := NewTable([]int32{format.EndOfChain})
	next, err := tbl.Next(0)
	require.NoError(t, err)
	require.Equal(t, format.EndOfChain, next)

	_, err = tbl.Next(1)
	require.ErrorIs(t, err, ErrBadLink)
	require.Equal(t, 1, tbl.Len())
}
