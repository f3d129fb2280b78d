package fetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/xscanner/chain"
)

func TestPlaceholderFetcher_AdvancesWithoutCandidates(t *testing.T) {
	f := newPlaceholderFetcher(chain.Config{}, "TERRA")
	block, err := f.Fetch(context.Background(), 123)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), block.Height)
	assert.Empty(t, block.Candidates)
}
