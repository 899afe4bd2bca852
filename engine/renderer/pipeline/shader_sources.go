package pipeline

const partVertexSource = `#version 410 core
layout(location = 0) in float vertX;
layout(location = 1) in float vertY;
layout(location = 2) in float uvX;
layout(location = 3) in float uvY;
layout(location = 4) in float deformX;
layout(location = 5) in float deformY;
uniform mat4 mvp;
uniform vec2 offset;
out vec2 texUVs;
void main() {
	gl_Position = mvp * vec4(vertX - offset.x + deformX, vertY - offset.y + deformY, 0.0, 1.0);
	texUVs = vec2(uvX, uvY);
}
`

const screenFunction = `
uniform vec3 multColor;
uniform vec3 screenColor;
vec4 screen(vec3 tcol, float a) {
	return vec4(vec3(1.0) - ((vec3(1.0) - tcol) * (vec3(1.0) - (screenColor * a))), a);
}
`

// Albedo only.
const partStage1Source = `#version 410 core
in vec2 texUVs;
uniform sampler2D albedo;
uniform float opacity;
layout(location = 0) out vec4 outAlbedo;
` + screenFunction + `
void main() {
	vec4 texColor = texture(albedo, texUVs);
	outAlbedo = screen(texColor.rgb, texColor.a) * vec4(multColor, 1.0) * opacity;
}
`

// Emission and bump only.
const partStage2Source = `#version 410 core
in vec2 texUVs;
uniform sampler2D albedo;
uniform sampler2D emissive;
uniform sampler2D bumpmap;
uniform float emissionStrength;
layout(location = 1) out vec4 outEmissive;
layout(location = 2) out vec4 outBump;
` + screenFunction + `
void main() {
	vec4 texColor = texture(albedo, texUVs);
	vec4 emiColor = texture(emissive, texUVs);
	vec4 bmpColor = texture(bumpmap, texUVs);
	vec4 emissionOut = screen(emiColor.rgb, texColor.a) * vec4(multColor, 1.0) * emissionStrength;
	outEmissive = emissionOut * texColor.a;
	outBump = bmpColor * texColor.a;
}
`

const partStage3Source = `#version 410 core
in vec2 texUVs;
uniform sampler2D albedo;
uniform sampler2D emissive;
uniform sampler2D bumpmap;
uniform float opacity;
uniform float emissionStrength;
layout(location = 0) out vec4 outAlbedo;
layout(location = 1) out vec4 outEmissive;
layout(location = 2) out vec4 outBump;
` + screenFunction + `
void main() {
	vec4 texColor = texture(albedo, texUVs);
	vec4 emiColor = texture(emissive, texUVs);
	vec4 bmpColor = texture(bumpmap, texUVs);
	vec4 mult = vec4(multColor, 1.0);
	outAlbedo = screen(texColor.rgb, texColor.a) * mult * opacity;
	outEmissive = screen(emiColor.rgb, texColor.a) * mult * emissionStrength * outAlbedo.a;
	outBump = bmpColor * outAlbedo.a;
}
`

const partMaskSource = `#version 410 core
in vec2 texUVs;
uniform sampler2D tex;
uniform float threshold;
out vec4 outColor;
void main() {
	vec4 color = texture(tex, texUVs);
	if (color.a <= threshold) discard;
	outColor = vec4(1.0);
}
`

const maskVertexSource = `#version 410 core
layout(location = 0) in float vertX;
layout(location = 1) in float vertY;
layout(location = 2) in float deformX;
layout(location = 3) in float deformY;
uniform mat4 mvp;
uniform vec2 offset;
void main() {
	gl_Position = mvp * vec4(vertX - offset.x + deformX, vertY - offset.y + deformY, 0.0, 1.0);
}
`

const maskFragmentSource = `#version 410 core
out vec4 outColor;
void main() {
	outColor = vec4(0.0, 0.0, 0.0, 1.0);
}
`

// Vertex stage shared by the full screen programs.
const quadVertexSource = `#version 410 core
layout(location = 0) in vec2 inPos;
layout(location = 1) in vec2 inUv;
out vec2 texUVs;
void main() {
	texUVs = inUv;
	gl_Position = vec4(inPos, 0.0, 1.0);
}
`

const postFragmentSource = `#version 410 core
in vec2 texUVs;
uniform sampler2D albedo;
uniform sampler2D emissive;
uniform sampler2D bumpmap;
out vec4 outColor;
void main() {
	vec4 a = texture(albedo, texUVs);
	vec4 e = texture(emissive, texUVs);
	outColor = vec4(a.rgb + e.rgb, a.a);
}
`

const debugVertexSource = `#version 410 core
layout(location = 0) in vec2 inPos;
uniform mat4 mvp;
void main() {
	gl_Position = mvp * vec4(inPos, 0.0, 1.0);
}
`

const debugFragmentSource = `#version 410 core
uniform vec4 inColor;
out vec4 outColor;
void main() {
	outColor = inColor;
}
`

const presentFragmentSource = `#version 410 core
in vec2 texUVs;
uniform sampler2D srcTex;
uniform int useColorKey;
out vec4 outColor;
void main() {
	vec4 c = texture(srcTex, texUVs);
	if (useColorKey == 0) {
		outColor = c;
	} else if (c.a <= 0.001) {
		outColor = vec4(1.0, 0.0, 1.0, 1.0);
	} else {
		outColor = vec4(clamp(c.rgb / max(c.a, 0.0001), 0.0, 1.0), 1.0);
	}
}
`

const thumbVertexSource = `#version 410 core
layout(location = 0) in vec2 inPos;
layout(location = 1) in vec2 inUv;
uniform mat4 mvp;
out vec2 texUVs;
void main() {
	gl_Position = mvp * vec4(inPos, 0.0, 1.0);
	texUVs = inUv;
}
`

const thumbFragmentSource = `#version 410 core
in vec2 texUVs;
uniform sampler2D albedo;
out vec4 outColor;
void main() {
	outColor = texture(albedo, texUVs);
}
`
