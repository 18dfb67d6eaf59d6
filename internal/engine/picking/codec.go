// Package picking recovers the world position under a window pixel by
// rendering the scene three times with a material that writes one coordinate
// axis, bit-packed into RGBA, and reading the pixel back.
package picking

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
)

// Encoding selects how the fragment stage packs a float into RGBA.
type Encoding int

const (
	// EncodingNative reinterprets the float bits directly (floatBitsToUint).
	EncodingNative Encoding = iota
	// EncodingEmulated rebuilds the bit pattern with float arithmetic only.
	// Exact for normal floats; subnormals, infinities and NaN are not supported.
	EncodingEmulated
)

// ParseEncoding maps a config name to an Encoding. Unknown names select native.
func ParseEncoding(name string) Encoding {
	if name == "emulated" {
		return EncodingEmulated
	}
	return EncodingNative
}

func (e Encoding) String() string {
	if e == EncodingEmulated {
		return "emulated"
	}
	return "native"
}

// Encode packs v into four bytes in the order the fragment stage writes
// R, G, B, A: mantissa bits 0-7, mantissa bits 8-15, the low exponent bit
// above mantissa bits 16-22, then the sign above the high seven exponent bits.
// This is the little-endian byte order of the IEEE-754 single.
func Encode(v float32) [4]byte {
	var out [4]byte
	binary.LittleEndian.PutUint32(out[:], math.Float32bits(v))
	return out
}

// Decode is the exact inverse of Encode.
func Decode(b [4]byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[:]))
}

// EncodeEmulated produces the same bytes as Encode using only the float
// operations available to shaders without integer bit casts. It mirrors the
// emulated fragment stage and is used to check it. Zero (of either sign)
// encodes to four zero bytes.
func EncodeEmulated(v float32) [4]byte {
	if v == 0 {
		return [4]byte{}
	}

	var sign float32
	if v < 0 {
		sign = 1
	}
	v = math32.Abs(v)

	exponent := math32.Floor(math32.Log2(v))
	// log2 may land one off near powers of two.
	if m := v / math32.Exp2(exponent); m < 1 {
		exponent--
	} else if m >= 2 {
		exponent++
	}

	biased := exponent + 127
	fraction := (v/math32.Exp2(exponent) - 1) * 8388608

	half := biased / 2
	lowExpBit := (half - math32.Floor(half)) * 2
	highExpBits := math32.Floor(half)

	return [4]byte{
		byte(extractBits(fraction, 0, 8)),
		byte(extractBits(fraction, 8, 16)),
		byte(lowExpBit*128 + extractBits(fraction, 16, 23)),
		byte(sign*128 + highExpBits),
	}
}

func shiftRight(v, amt float32) float32 {
	v = math32.Floor(v) + 0.5
	return math32.Floor(v / math32.Exp2(amt))
}

func shiftLeft(v, amt float32) float32 {
	return math32.Floor(v*math32.Exp2(amt) + 0.5)
}

func maskLast(v, bits float32) float32 {
	return math32.Mod(v, shiftLeft(1, bits))
}

func extractBits(num, from, to float32) float32 {
	from = math32.Floor(from + 0.5)
	to = math32.Floor(to + 0.5)
	return maskLast(shiftRight(num, from), to-from)
}
