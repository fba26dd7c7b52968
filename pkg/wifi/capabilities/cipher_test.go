package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCipherSuite(t *testing.T) {
	assert.Equal(t, CipherCCMP, ParseCipherSuite("CCMP"))
	assert.Equal(t, CipherUnknown, ParseCipherSuite("bogus"))
}

func TestAkmSuiteClassification(t *testing.T) {
	assert.True(t, AkmFTSAE.IsFastTransition())
	assert.False(t, AkmSAE.IsFastTransition())

	assert.True(t, AkmWPAEAP.IsDot1X())
	assert.False(t, AkmWPAPSK.IsDot1X())

	// FT-EAP is both a fast-transition and a dot1x family member.
	assert.True(t, AkmFTEAP.IsFastTransition())
	assert.True(t, AkmFTEAP.IsDot1X())
}

func TestSecurityProtocolBitAndPairwiseProperty(t *testing.T) {
	assert.Equal(t, 1, SecurityWPA.Bit())
	assert.Equal(t, 2, SecurityWPA2WPA3.Bit())
	assert.Equal(t, 0, SecurityUnknown.Bit())

	assert.Equal(t, "wpa_pairwise", SecurityWPA.PairwiseProperty())
	assert.Equal(t, "rsn_pairwise", SecurityWPA2WPA3.PairwiseProperty())
}

func TestSupportedAuthAlgorithmsMask(t *testing.T) {
	assert.Equal(t, int(AuthOpenSystem)|int(AuthSharedKey), SupportedAuthAlgorithms)
}
