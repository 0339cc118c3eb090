package glbackend

// litVertexSrc transforms scene boxes for the forward pass.
const litVertexSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec3 vWorldPos;
out vec3 vNormal;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vWorldPos = world.xyz;
	vNormal = normalize(mat3(transpose(inverse(uModel))) * aNormal);
	gl_Position = uViewProj * world;
}
`

// litFragmentSrc shades with the published light arrays and both shadow
// atlases.
const litFragmentSrc = `
#version 410 core

#define MAX_VISIBLE_LIGHTS 16
#define MAX_CASCADES 4

in vec3 vWorldPos;
in vec3 vNormal;
out vec4 FragColor;

uniform vec4 uColor;
uniform vec3 uCameraPos;

uniform vec4 _VisibleLightColors[MAX_VISIBLE_LIGHTS];
uniform vec4 _VisibleLightDirectionsOrPositions[MAX_VISIBLE_LIGHTS];
uniform vec4 _VisibleLightAttenuations[MAX_VISIBLE_LIGHTS];
uniform vec4 _VisibleLightSpotDirections[MAX_VISIBLE_LIGHTS];

uniform sampler2DShadow _ShadowMap;
uniform mat4 _WorldToShadowMatrices[MAX_VISIBLE_LIGHTS];
uniform float _ShadowBias;
uniform vec4 _ShadowData[MAX_VISIBLE_LIGHTS];
uniform vec4 _ShadowMapSize;
uniform vec4 _GlobalShadowData;

uniform sampler2DShadow _CascadedShadowMap;
uniform mat4 _WorldToShadowCascadeMatrices[MAX_CASCADES + 1];
uniform vec4 _CascadedShadowMapSize;
uniform float _CascadedShadowStrength;
uniform vec4 _CascadeCullingSpheres[MAX_CASCADES];

uniform int _SHADOWS_SOFT;
uniform int _CASCADED_SHADOWS_HARD;
uniform int _CASCADED_SHADOWS_SOFT;

float sampleShadow(sampler2DShadow map, vec3 pos, vec4 size, bool soft) {
	if (!soft) {
		return texture(map, pos);
	}
	float sum = 0.0;
	for (int x = -1; x <= 1; x++) {
		for (int y = -1; y <= 1; y++) {
			sum += texture(map, pos + vec3(vec2(x, y) * size.xy, 0.0));
		}
	}
	return sum / 9.0;
}

bool outsideShadowDistance() {
	vec3 d = vWorldPos - uCameraPos;
	return dot(d, d) > _GlobalShadowData.y;
}

float atlasAttenuation(int i) {
	if (_ShadowData[i].x <= 0.0 || outsideShadowDistance()) {
		return 1.0;
	}
	vec4 s = _WorldToShadowMatrices[i] * vec4(vWorldPos, 1.0);
	if (s.w <= 0.0) {
		return 1.0;
	}
	s.xyz /= s.w;
	s.z -= _ShadowBias;
	bool soft = _SHADOWS_SOFT != 0 && _ShadowData[i].y > 0.0;
	float a = sampleShadow(_ShadowMap, s.xyz, _ShadowMapSize, soft);
	return mix(1.0, a, _ShadowData[i].x);
}

bool insideCascade(int i) {
	vec4 sphere = _CascadeCullingSpheres[i];
	vec3 d = vWorldPos - sphere.xyz;
	return sphere.w > 0.0 && dot(d, d) < sphere.w;
}

float cascadeAttenuation() {
	if (outsideShadowDistance()) {
		return 1.0;
	}
	int cascade = MAX_CASCADES;
	for (int i = MAX_CASCADES - 1; i >= 0; i--) {
		if (insideCascade(i)) {
			cascade = i;
		}
	}
	vec4 s = _WorldToShadowCascadeMatrices[cascade] * vec4(vWorldPos, 1.0);
	s.z -= _ShadowBias;
	float a = sampleShadow(_CascadedShadowMap, s.xyz, _CascadedShadowMapSize, _CASCADED_SHADOWS_SOFT != 0);
	return mix(1.0, a, _CascadedShadowStrength);
}

vec3 diffuseLight(int i, vec3 normal, float shadow) {
	vec4 color = _VisibleLightColors[i];
	vec4 dirOrPos = _VisibleLightDirectionsOrPositions[i];
	vec4 atten = _VisibleLightAttenuations[i];
	vec3 spotDir = _VisibleLightSpotDirections[i].xyz;

	vec3 lightVector = dirOrPos.xyz - vWorldPos * dirOrPos.w;
	vec3 lightDir = normalize(lightVector);
	float diffuse = clamp(dot(normal, lightDir), 0.0, 1.0);

	float rangeFade = dot(lightVector, lightVector) * atten.x;
	rangeFade = clamp(1.0 - rangeFade * rangeFade, 0.0, 1.0);
	rangeFade *= rangeFade;

	float spotFade = clamp(dot(spotDir, lightDir) * atten.z + atten.w, 0.0, 1.0);
	spotFade *= spotFade;

	float distanceSqr = max(dot(lightVector, lightVector), 0.00001);
	diffuse *= shadow * spotFade * rangeFade / distanceSqr;
	return diffuse * color.rgb;
}

void main() {
	vec3 normal = normalize(vNormal);
	bool cascaded = _CASCADED_SHADOWS_HARD != 0 || _CASCADED_SHADOWS_SOFT != 0;
	bool mainFound = false;

	vec3 light = vec3(0.05);
	for (int i = 0; i < MAX_VISIBLE_LIGHTS; i++) {
		float shadow = 1.0;
		bool directional = _VisibleLightDirectionsOrPositions[i].w == 0.0;
		if (cascaded && !mainFound && directional && _ShadowData[i].x > 0.0) {
			mainFound = true;
			shadow = cascadeAttenuation();
		} else {
			shadow = atlasAttenuation(i);
		}
		light += diffuseLight(i, normal, shadow);
	}
	FragColor = vec4(uColor.rgb * light, uColor.a);
}
`

// casterVertexSrc renders depth only into a shadow tile.
const casterVertexSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;
uniform mat4 uModel;

void main() {
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const casterFragmentSrc = `
#version 410 core

void main() {
}
`

// skyVertexSrc draws one fullscreen triangle on the far plane.
const skyVertexSrc = `
#version 410 core

out vec2 vUV;

void main() {
	vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
	vUV = pos;
	gl_Position = vec4(pos * 2.0 - 1.0, 1.0, 1.0);
}
`

const skyFragmentSrc = `
#version 410 core

in vec2 vUV;
out vec4 FragColor;

uniform vec4 uHorizon;
uniform vec4 uZenith;

void main() {
	FragColor = mix(uHorizon, uZenith, clamp(vUV.y, 0.0, 1.0));
}
`

// wireVertexSrc draws world-space debug lines.
const wireVertexSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const wireFragmentSrc = `
#version 410 core

out vec4 FragColor;

uniform vec4 uColor;

void main() {
	FragColor = uColor;
}
`
