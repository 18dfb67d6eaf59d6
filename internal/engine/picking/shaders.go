package picking

// VertexShader places points exactly like the display pass and forwards the
// display-space position masked by the selected axis.
const VertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;

uniform mat4 uView;
uniform mat4 uProjection;
uniform float uPointSize;
uniform vec3 uScale;
uniform vec3 uOffsets;
uniform vec3 uAxis;

out vec3 vXYZ;

void main() {
    vec3 fpos = ((aPosition - uOffsets) * uScale).xzy * vec3(-1.0, 1.0, 1.0);
    gl_Position = uProjection * uView * vec4(fpos, 1.0);
    gl_PointSize = uPointSize;
    vXYZ = uAxis * fpos;
}
`

// fragmentNative writes the raw float bits.
const fragmentNative = `#version 410 core
in vec3 vXYZ;
out vec4 FragColor;

void main() {
    uint b = floatBitsToUint(vXYZ.x + vXYZ.y + vXYZ.z);
    FragColor = vec4(
        float(b & 0xFFu),
        float((b >> 8u) & 0xFFu),
        float((b >> 16u) & 0xFFu),
        float(b >> 24u)) / 255.0;
}
`

// fragmentEmulated rebuilds the float bits with float arithmetic.
const fragmentEmulated = `#version 410 core
in vec3 vXYZ;
out vec4 FragColor;

float shiftRight(float v, float amt) {
    v = floor(v) + 0.5;
    return floor(v / exp2(amt));
}

float shiftLeft(float v, float amt) {
    return floor(v * exp2(amt) + 0.5);
}

float maskLast(float v, float bits) {
    return mod(v, shiftLeft(1.0, bits));
}

float extractBits(float num, float from, float to) {
    from = floor(from + 0.5);
    to = floor(to + 0.5);
    return maskLast(shiftRight(num, from), to - from);
}

vec4 encodeFloat(float val) {
    if (val == 0.0)
        return vec4(0.0);
    float sign = val > 0.0 ? 0.0 : 1.0;
    val = abs(val);
    float exponent = floor(log2(val));
    float m = val / exp2(exponent);
    if (m < 1.0) exponent -= 1.0;
    else if (m >= 2.0) exponent += 1.0;
    float biased = exponent + 127.0;
    float fraction = ((val / exp2(exponent)) - 1.0) * 8388608.0;

    float t = biased / 2.0;
    float lowExpBit = fract(t) * 2.0;
    float highExpBits = floor(t);

    float r = extractBits(fraction, 0.0, 8.0);
    float g = extractBits(fraction, 8.0, 16.0);
    float b = lowExpBit * 128.0 + extractBits(fraction, 16.0, 23.0);
    float a = sign * 128.0 + highExpBits;
    return vec4(r, g, b, a) / 255.0;
}

void main() {
    FragColor = encodeFloat(vXYZ.x + vXYZ.y + vXYZ.z);
}
`

// FragmentShader returns the fragment stage for an encoding.
func FragmentShader(e Encoding) string {
	if e == EncodingEmulated {
		return fragmentEmulated
	}
	return fragmentNative
}
