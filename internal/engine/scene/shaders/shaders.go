// Package shaders holds the GLSL sources of the scene renderers.
package shaders

// PointVertexShader places points in display space and derives their color
// from the active color and intensity sources.
const PointVertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aColor;
layout(location = 2) in float aIntensity;
layout(location = 3) in float aClassification;

uniform mat4 uView;
uniform mat4 uProjection;
uniform float uPointSize;
uniform vec3 uScale;
uniform vec3 uOffsets;
uniform vec2 uZRange;

uniform float uRGB;
uniform float uClass;
uniform float uMap;
uniform float uIMap;
uniform float uIntensity;
uniform float uHeight;
uniform float uIHeight;
uniform float uIntensityBlend;
uniform float uMaxColorComponent;
uniform float uClampLower;
uniform float uClampHigher;
uniform float uColorClampLower;
uniform float uColorClampHigher;

out vec3 vColor;

vec3 heat(float t) {
    t = clamp(t, 0.0, 1.0);
    return clamp(vec3(1.5 - abs(4.0 * t - 3.0),
                      1.5 - abs(4.0 * t - 2.0),
                      1.5 - abs(4.0 * t - 1.0)), 0.0, 1.0);
}

vec3 classColor(float c) {
    int k = int(c + 0.5);
    if (k == 2) return vec3(0.60, 0.45, 0.30); // ground
    if (k == 3) return vec3(0.55, 0.80, 0.35);
    if (k == 4) return vec3(0.30, 0.70, 0.25);
    if (k == 5) return vec3(0.10, 0.50, 0.10);
    if (k == 6) return vec3(0.85, 0.30, 0.25); // building
    if (k == 7) return vec3(0.90, 0.10, 0.90);
    if (k == 9) return vec3(0.20, 0.45, 0.90); // water
    return vec3(0.75);
}

void main() {
    vec3 fpos = ((aPosition - uOffsets) * uScale).xzy * vec3(-1.0, 1.0, 1.0);
    gl_Position = uProjection * uView * vec4(fpos, 1.0);
    gl_PointSize = uPointSize;

    float zr = max(uZRange.y - uZRange.x, 0.0001);
    float h = clamp((aPosition.z - uZRange.x) / zr, 0.0, 1.0);

    vec3 rgb = aColor / uMaxColorComponent;
    rgb = clamp((rgb - uColorClampLower) / (uColorClampHigher - uColorClampLower), 0.0, 1.0);

    vec3 color = rgb * uRGB +
                 classColor(aClassification) * uClass +
                 heat(h) * uMap +
                 heat(1.0 - h) * uIMap;

    float iw = uIntensity + uHeight + uIHeight;
    float i = clamp((aIntensity - uClampLower) / (uClampHigher - uClampLower), 0.0, 1.0) * uIntensity +
              h * uHeight +
              (1.0 - h) * uIHeight;

    float colorw = uRGB + uClass + uMap + uIMap;
    if (colorw == 0.0) {
        color = vec3(i);
    } else if (iw > 0.0) {
        color = mix(color, color * i, uIntensityBlend);
    }
    vColor = color;
}
`

// PointFragmentShader draws round points.
const PointFragmentShader = `#version 410 core
in vec3 vColor;
out vec4 FragColor;

void main() {
    vec2 d = gl_PointCoord - vec2(0.5);
    if (dot(d, d) > 0.25) discard;
    FragColor = vec4(vColor, 1.0);
}
`

// ModelVertexShader transforms STL meshes.
const ModelVertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;

void main() {
    gl_Position = uMVP * vec4(aPosition, 1.0);
    vNormal = mat3(uModel) * aNormal;
}
`

// ModelFragmentShader applies one directional light to a flat color.
const ModelFragmentShader = `#version 410 core
in vec3 vNormal;
out vec4 FragColor;

uniform vec3 uColor;
uniform vec3 uLightDir;
uniform vec3 uAmbient;

void main() {
    vec3 n = normalize(vNormal);
    float diff = abs(dot(n, normalize(uLightDir)));
    FragColor = vec4(uColor * (uAmbient + (1.0 - uAmbient) * diff), 1.0);
}
`

// LineVertexShader draws measurement polylines in display space.
const LineVertexShader = `#version 410 core
layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aColor;

uniform mat4 uViewProj;

out vec3 vColor;

void main() {
    gl_Position = uViewProj * vec4(aPosition, 1.0);
    vColor = aColor;
}
`

// LineFragmentShader passes the vertex color through.
const LineFragmentShader = `#version 410 core
in vec3 vColor;
out vec4 FragColor;

void main() {
    FragColor = vec4(vColor, 1.0);
}
`

// MarkerVertexShader expands a unit quad around a marker center given in
// overlay pixels.
const MarkerVertexShader = `#version 410 core
layout(location = 0) in vec2 aCorner;

uniform mat4 uViewProj;
uniform vec3 uCenter;
uniform float uSize;

out vec2 vUV;

void main() {
    vec3 p = uCenter + vec3(aCorner * uSize, 0.0);
    gl_Position = uViewProj * vec4(p, 1.0);
    vUV = aCorner + vec2(0.5);
}
`

// MarkerFragmentShader draws a ring with a dark outline.
const MarkerFragmentShader = `#version 410 core
in vec2 vUV;
out vec4 FragColor;

uniform vec3 uColor;

void main() {
    float r = length(vUV - vec2(0.5)) * 2.0;
    if (r > 1.0) discard;
    vec3 c = r > 0.75 ? vec3(0.0) : uColor;
    FragColor = vec4(c, 1.0);
}
`
