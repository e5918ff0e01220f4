package types

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownValues(t *testing.T) {
	cases := []struct {
		in   Millivolts
		want Offset
		hex  string
	}{
		{0, 0, "00000000"},
		{-80, Offset(-82 << 21), "f5c00000"}, // -81.92 rounds to -82
		{50, Offset(51 << 21), "06600000"},   // 51.2 rounds to 51
		{-125, Offset(-128 << 21), "f0000000"},
		{-100.5, Offset(-103 << 21), "f3200000"}, // -102.912
		{1, Offset(1 << 21), "00200000"},
		{-1, Offset(-1 << 21), "ffe00000"},
		{-1000, Offset(-1024 << 21), "80000000"}, // lowest step
		{999, Offset(1023 << 21), "7fe00000"},    // highest step
	}
	for _, tc := range cases {
		t.Run(tc.in.String(), func(t *testing.T) {
			got, err := Encode(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.hex, got.Hex())
			assert.Equal(t, "0x"+tc.hex, got.String())
		})
	}
}

func TestEncode_MatchesScaleAndShift(t *testing.T) {
	for v := -999.0; v <= 999.0; v += 0.25 {
		got, err := Encode(Millivolts(v))
		require.NoError(t, err, "v=%v", v)
		want := int32(math.Round(v*1.024)) << 21
		require.Equal(t, want, int32(got), "v=%v", v)
	}
}

func TestEncode_RejectsOutOfRange(t *testing.T) {
	for _, v := range []float64{1000, -1001, 5000, -4096, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Encode(Millivolts(v))
		require.ErrorIs(t, err, ErrEncoding, "v=%v", v)
	}
}

func TestDecode_RoundTripWithinHalfStep(t *testing.T) {
	for _, v := range []float64{-250, -80, -50.5, 0, 12.25, 300} {
		o, err := Encode(Millivolts(v))
		require.NoError(t, err)
		assert.InDelta(t, v, float64(Decode(o)), 0.5/1.024+1e-9, "v=%v", v)
	}
	assert.InDelta(t, -80.078125, float64(Decode(Offset(-82<<21))), 1e-9)
}

func TestOffset_Steps(t *testing.T) {
	assert.Equal(t, int32(-82), Offset(-82<<21).Steps())
	assert.Equal(t, int32(1023), Offset(1023<<21).Steps())
	assert.Equal(t, int32(0), Offset(0).Steps())
}

func TestMillivolts_Format(t *testing.T) {
	assert.Equal(t, "-80.000mV", Millivolts(-80).String())
	assert.Equal(t, "12.500mV", Millivolts(12.5).String())
}

func ExampleEncode() {
	o, _ := Encode(-80)
	fmt.Println(o)
	// Output: 0xf5c00000
}

func TestOffset_MarshalText(t *testing.T) {
	b, err := Offset(-82 << 21).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0xf5c00000", string(b))
}
