package types

import (
	"fmt"
	"math"
)

const (
	// scale converts millivolts into 1/1024 V steps.
	scale = 1.024
	// shift places the 11-bit step count at bits 21..31 of the offset field.
	shift = 21

	minStep = -1 << 10
	maxStep = 1<<10 - 1
)

// Millivolts is a signed voltage offset in mV.
type Millivolts float64

func (m Millivolts) String() string { return fmt.Sprintf("%.3fmV", float64(m)) }

// Offset is the fixed-point form of a voltage offset as the processor's
// voltage-offset register expects it in the low 32 bits.
type Offset int32

// Hex returns the two's complement bit pattern as 8 lower-case hex digits.
func (o Offset) Hex() string { return fmt.Sprintf("%08x", uint32(o)) }

func (o Offset) String() string { return "0x" + o.Hex() }

// Steps returns the signed 1/1024 V step count held in the offset.
func (o Offset) Steps() int32 { return int32(o) >> shift }

// Encode converts mv into the register encoding:
//
//	round(mv * 1.024) << 21
//
// Rounding is half away from zero. Values that do not fit the 11-bit signed
// step field, NaN and infinities return ErrEncoding.
func Encode(mv Millivolts) (Offset, error) {
	f := float64(mv)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not a finite voltage", ErrEncoding, f)
	}
	step := math.Round(f * scale)
	if step < minStep || step > maxStep {
		return 0, fmt.Errorf("%w: %s is outside [%s, %s]",
			ErrEncoding, mv, Decode(Offset(minStep<<shift)), Decode(Offset(maxStep<<shift)))
	}
	return Offset(int32(step) << shift), nil
}

// Decode converts an offset back into millivolts. The result is the value
// the hardware applies, so it may differ from the configured value by up to
// half a step.
func Decode(o Offset) Millivolts {
	return Millivolts(float64(o.Steps()) / scale)
}

// MarshalText renders the offset as 0x-prefixed hex in reports.
func (o Offset) MarshalText() ([]byte, error) { return []byte(o.String()), nil }
