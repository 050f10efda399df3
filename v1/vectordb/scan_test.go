package vectordb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func pageOf(ids ...string) []Match {
	out := make([]Match, 0, len(ids))
	for _, id := range ids {
		out = append(out, Match{ID: id})
	}
	return out
}

func TestScanAll_FollowsOffsets(t *testing.T) {
	store := NewMockStore(gomock.NewController(t))
	gomock.InOrder(
		store.EXPECT().Query(gomock.Any(), "buy-lists", Query{TopK: 3, IncludeMetadata: true}).
			Return(pageOf("a", "b", "c"), nil),
		store.EXPECT().Query(gomock.Any(), "buy-lists", Query{TopK: 3, IncludeMetadata: true, Offset: "c"}).
			Return(pageOf("c", "d", "e"), nil),
		store.EXPECT().Query(gomock.Any(), "buy-lists", Query{TopK: 3, IncludeMetadata: true, Offset: "e"}).
			Return(pageOf("e"), nil),
	)

	got, err := ScanAll(context.Background(), store, "buy-lists", nil, 2)
	require.NoError(t, err)
	assert.Equal(t, pageOf("a", "b", "c", "d", "e"), got)
}

func TestScanAll_StoreIgnoringOffset(t *testing.T) {
	store := NewMockStore(gomock.NewController(t))
	store.EXPECT().Query(gomock.Any(), "buy-lists", gomock.Any()).Return(pageOf("a", "b"), nil).Times(2)

	_, err := ScanAll(context.Background(), store, "buy-lists", nil, 1)
	assert.ErrorContains(t, err, "did not advance")
}

func TestScanAll_Error(t *testing.T) {
	store := NewMockStore(gomock.NewController(t))
	store.EXPECT().Query(gomock.Any(), "buy-lists", gomock.Any()).Return(nil, fmt.Errorf("boom: %w", ErrUnavailable))

	_, err := ScanAll(context.Background(), store, "buy-lists", nil, 0)
	assert.ErrorIs(t, err, ErrUnavailable)
}
