package aircraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureSchemaCounts(t *testing.T) {
	assert.Len(t, FeatureSchema(FixedWing), 16)
	assert.Len(t, FeatureSchema(Multirotor), 15)
	assert.Len(t, FeatureSchema(VTOL), 19)
}

func TestUnknownSharesMultirotorSchema(t *testing.T) {
	assert.Equal(t, FeatureSchema(Multirotor), FeatureSchema(Unknown))
}

func TestFeatureSchemaReturnsCopy(t *testing.T) {
	a := FeatureSchema(FixedWing)
	a[0] = "mutated"
	assert.Equal(t, "altitude", FeatureSchema(FixedWing)[0])
}

func TestModelClassFallback(t *testing.T) {
	assert.Equal(t, Multirotor, Unknown.ModelClass())
	assert.Equal(t, FixedWing, FixedWing.ModelClass())
	assert.Equal(t, VTOL, VTOL.ModelClass())
}

func TestSignatures(t *testing.T) {
	sig, ok := SignatureFor(VTOL)
	require.True(t, ok)
	assert.Equal(t, 5, sig.MotorCount)
	assert.True(t, sig.VerticalTakeoff)
	assert.True(t, sig.HasControlSurfaces)

	_, ok = SignatureFor(Unknown)
	assert.False(t, ok)
}

func TestClassStrings(t *testing.T) {
	assert.Equal(t, "fixed_wing", FixedWing.String())
	assert.Equal(t, "multirotor", Multirotor.String())
	assert.Equal(t, "vtol", VTOL.String())
	assert.Equal(t, "unknown", Unknown.String())
}
