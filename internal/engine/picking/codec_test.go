package picking

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeLayout(t *testing.T) {
	// 1.0 = 0x3F800000: sign 0, exponent 127, mantissa 0
	assert.Equal(t, [4]byte{0x00, 0x00, 0x80, 0x3F}, Encode(1))
	// -2.5 = 0xC0200000
	assert.Equal(t, [4]byte{0x00, 0x00, 0x20, 0xC0}, Encode(-2.5))
}

func TestEncodeZeroIsBackground(t *testing.T) {
	assert.Equal(t, [4]byte{}, Encode(0))
	assert.Equal(t, [4]byte{}, EncodeEmulated(0))
	assert.Equal(t, [4]byte{}, EncodeEmulated(float32(math.Copysign(0, -1))))
	assert.Equal(t, float32(0), Decode([4]byte{}))
}

func TestDecodeInvertsEncode(t *testing.T) {
	values := []float32{
		1, -1, 0.5, 3.14159, -123.456, 1e-30, 6.02e23,
		math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32,
	}
	for _, v := range values {
		assert.Equal(t, v, Decode(Encode(v)), "value %g", v)
	}
}

func TestEmulatedMatchesNative(t *testing.T) {
	values := []float32{
		1, -1, 2, 0.5, 0.75, 3, 1023.999, -4096, 8388607, 8388608, 16777215,
		0.1, 1.0 / 3.0, -1e-20, 1e20, 1.17549435e-38, math.MaxFloat32,
	}
	for _, v := range values {
		assert.Equal(t, Encode(v), EncodeEmulated(v), "value %g", v)
	}
}

func TestEmulatedMatchesNativeRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		// Random normal floats across the exponent range.
		bits := rng.Uint32()
		exp := (bits >> 23) & 0xFF
		if exp == 0 || exp == 0xFF {
			continue
		}
		v := math.Float32frombits(bits)
		assert.Equal(t, Encode(v), EncodeEmulated(v), "bits %08x", bits)
	}
}

func TestEmulatedPowersOfTwo(t *testing.T) {
	for e := -126; e <= 127; e++ {
		v := float32(math.Ldexp(1, e))
		assert.Equal(t, Encode(v), EncodeEmulated(v), "2^%d", e)
		assert.Equal(t, Encode(-v), EncodeEmulated(-v), "-2^%d", e)
	}
}

func TestParseEncoding(t *testing.T) {
	assert.Equal(t, EncodingEmulated, ParseEncoding("emulated"))
	assert.Equal(t, EncodingNative, ParseEncoding("native"))
	assert.Equal(t, EncodingNative, ParseEncoding("bogus"))
	assert.Equal(t, "emulated", EncodingEmulated.String())
}
