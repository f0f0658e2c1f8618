package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadGenerations(t *testing.T) {
	input := strings.Join([]string{
		`{"generation":1,"program":"(b)","outcome":{"problem_class":"classA","instance_id":"i2","seed":7,"stats":{"total_parcels":4}}}`,
		``,
		`{"generation":0,"program":"(a)","outcome":{"problem_class":"classA","instance_id":"i1","seed":7,"auction":{"num_reauctions":3}}}`,
		`{"generation":1,"program":"(ignored)","outcome":{"problem_class":"classA","instance_id":"i3","seed":7}}`,
	}, "\n")

	gens, err := readGenerations(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, gens, 2)

	assert.Equal(t, "(b)", gens[1].program)
	require.Len(t, gens[1].outcomes, 2)
	assert.Equal(t, "i2", gens[1].outcomes[0].InstanceID)
	assert.Equal(t, "i3", gens[1].outcomes[1].InstanceID)
	assert.Equal(t, 4, gens[1].outcomes[0].Stats.TotalParcels)

	require.NotNil(t, gens[0].outcomes[0].Auction)
	assert.Equal(t, 3, gens[0].outcomes[0].Auction.NumReauctions)
}

func TestReadGenerations_BadLine(t *testing.T) {
	_, err := readGenerations(strings.NewReader("{not json}\n"))
	assert.ErrorContains(t, err, "line 1")
}
