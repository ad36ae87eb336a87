package hashtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGeometry(t *testing.T) {
	tests := []struct {
		name       string
		size       int64
		wantErr    bool
		wantLeaves int
		wantHeight int
		wantTotal  int
	}{
		{name: "single block", size: BlockSize, wantLeaves: 1, wantHeight: 0, wantTotal: 1},
		{name: "two blocks", size: 2 * BlockSize, wantLeaves: 2, wantHeight: 1, wantTotal: 3},
		{name: "eight blocks", size: 8 * BlockSize, wantLeaves: 8, wantHeight: 3, wantTotal: 15},
		{name: "zero size rejected", size: 0, wantErr: true},
		{name: "negative size rejected", size: -BlockSize, wantErr: true},
		{name: "not a multiple of block size", size: BlockSize + 1, wantErr: true},
		{name: "leaf count not a power of two", size: 3 * BlockSize, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGeometry(tt.size)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantLeaves, g.Leaves)
			require.Equal(t, tt.wantHeight, g.Height)
			require.Equal(t, tt.wantTotal, g.TotalNodes)
		})
	}
}

func TestGeometry_LeafIndex(t *testing.T) {
	g, err := NewGeometry(8 * BlockSize)
	require.NoError(t, err)

	require.Equal(t, 7, g.LeafIndex(0))
	require.Equal(t, 14, g.LeafIndex(7))
}

func TestBlockRange(t *testing.T) {
	tests := []struct {
		name         string
		offset       int64
		changed      int64
		wantFirst    int
		wantLast     int
	}{
		{name: "single byte in block zero", offset: 0, changed: 1, wantFirst: 0, wantLast: 0},
		{name: "exactly one block", offset: 0, changed: BlockSize, wantFirst: 0, wantLast: 0},
		{name: "spans two blocks by one byte", offset: 0, changed: BlockSize + 1, wantFirst: 0, wantLast: 1},
		{name: "starts mid block", offset: BlockSize + 10, changed: 1, wantFirst: 1, wantLast: 1},
		{name: "ends exactly on a later boundary", offset: BlockSize, changed: BlockSize, wantFirst: 1, wantLast: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := BlockRange(tt.offset, tt.changed)
			require.Equal(t, tt.wantFirst, first)
			require.Equal(t, tt.wantLast, last)
		})
	}
}
