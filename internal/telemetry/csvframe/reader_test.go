package csvframe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadNormalizesHeadersAndFills(t *testing.T) {
	log := strings.Join([]string{
		"Timestamp,Altitude,Battery Voltage,speed",
		"0.0,50,15.2,1.0",
		"0.1,,15.1,1.2",
		"0.2,52,,0.8",
	}, "\n")

	frame, err := Read(strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, 3, frame.Len())
	assert.True(t, frame.Has("altitude"))
	assert.True(t, frame.Has("battery_voltage"))

	// Missing altitude at row 1 is forward-filled from row 0.
	assert.Equal(t, 50.0, frame.At("altitude", 1))
	// Missing voltage at row 2 is forward-filled from row 1.
	assert.Equal(t, 15.1, frame.At("battery_voltage", 2))

	ts := frame.Timestamps()
	require.Len(t, ts, 3)
	assert.InDelta(t, 0.2, ts[2], 1e-9)
}

func TestReadLeadingGapBackwardFilled(t *testing.T) {
	log := "altitude,speed\n,2\n30,3\n"

	frame, err := Read(strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, 30.0, frame.At("altitude", 0))
}

func TestReadRejectsMissingHeader(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	require.Error(t, err)
}
