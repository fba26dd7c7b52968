package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImpliedPhyTypes(t *testing.T) {
	implied := ImpliedPhyTypes(PhyAX)
	assert.Contains(t, implied, PhyAX)
	assert.Contains(t, implied, PhyAC)
	assert.Contains(t, implied, PhyN)
	assert.NotContains(t, implied, PhyB)
}

func TestImpliedPhyTypesLeaf(t *testing.T) {
	implied := ImpliedPhyTypes(PhyB)
	assert.Equal(t, []PhyType{PhyB}, implied)
}

func TestParseFrequencyBandToken(t *testing.T) {
	assert.Equal(t, Band5GHz, ParseFrequencyBandToken("5G"))
	assert.Equal(t, BandUnknown, ParseFrequencyBandToken("not-a-band"))
}

func TestFrequencyBandWireToken(t *testing.T) {
	assert.Equal(t, "2G", Band2_4GHz.WireToken())
	assert.Equal(t, "5G", Band5GHz.WireToken())
	assert.Equal(t, "6G", Band6GHz.WireToken())
	assert.Equal(t, "", BandUnknown.WireToken())
}
