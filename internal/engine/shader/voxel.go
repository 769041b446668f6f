package shader

// VoxelProgram is the program name terrain chunks are drawn with.
const VoxelProgram = "voxel"

// Fixed attribute locations. The blend weights location is queried at upload
// time through "in_texBlend".
const (
	VoxelPositionLocation = 0
	VoxelNormalLocation   = 1
)

// VoxelVertex transforms chunk geometry and forwards triplanar inputs.
const VoxelVertex = `
#version 410 core

layout (location = 0) in vec3 in_position;
layout (location = 1) in vec3 in_normal;
in vec4 in_texBlend;

uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;

out vec3 v_worldPos;
out vec3 v_normal;
out vec4 v_texBlend;

void main() {
	vec4 world = model * vec4(in_position, 1.0);
	v_worldPos = world.xyz;
	v_normal = mat3(model) * in_normal;
	v_texBlend = in_texBlend;
	gl_Position = projection * view * world;
}
`

// VoxelFragment mixes texture array layers by blend weight with triplanar mapping.
const VoxelFragment = `
#version 410 core

in vec3 v_worldPos;
in vec3 v_normal;
in vec4 v_texBlend;

layout (std140) uniform Material {
	vec4 ambient;
	vec4 diffuse;
	vec4 specular;
	vec4 emission;
	float shininess;
	float strength;
} material;

uniform sampler2DArray textures;
uniform vec3 lightDir;
uniform vec3 viewPos;

out vec4 FragColor;

const float texScale = 0.125;

vec4 triplanar(float layer, vec3 w) {
	vec4 x = texture(textures, vec3(v_worldPos.zy * texScale, layer));
	vec4 y = texture(textures, vec3(v_worldPos.xz * texScale, layer));
	vec4 z = texture(textures, vec3(v_worldPos.xy * texScale, layer));
	return x * w.x + y * w.y + z * w.z;
}

void main() {
	vec3 n = normalize(v_normal);
	vec3 w = abs(n);
	w /= (w.x + w.y + w.z);

	vec4 albedo = triplanar(0.0, w) * v_texBlend.x
	            + triplanar(1.0, w) * v_texBlend.y
	            + triplanar(2.0, w) * v_texBlend.z
	            + triplanar(3.0, w) * v_texBlend.w;

	vec3 l = normalize(-lightDir);
	float diff = max(dot(n, l), 0.0);
	vec3 h = normalize(l + normalize(viewPos - v_worldPos));
	float spec = pow(max(dot(n, h), 0.0), max(material.shininess, 1.0)) * material.strength;

	vec3 lit = albedo.rgb * (material.ambient.rgb + material.diffuse.rgb * diff + vec3(0.8) * diff)
	         + material.specular.rgb * spec * 0.05;
	FragColor = vec4(lit, 1.0);
}
`
