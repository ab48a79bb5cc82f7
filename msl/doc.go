// Package msl generates Metal Shading Language source from a translated
// GLSL ES tree.
//
// MSL is Apple's shader language for the Metal graphics API. It is based on
// C++14 with extensions for GPU programming, including explicit address
// spaces and attribute-based parameter binding.
//
// # Usage
//
//	e := msl.NewEmitter(msl.Options{LangVersion: msl.Version2_1})
//	if err := e.Emit(&buf, unit); err != nil {
//	    return err
//	}
//
// # Program Structure
//
// Metal has no mutable variables at program scope. The GLSL stage inputs,
// stage outputs, global variables and built-ins become members of a
// struct named Globals, and non-sampler uniforms become members of a
// struct named Uniforms bound at buffer(0). Every translated function
// takes them as trailing parameters:
//
//	float4 shade(float2 uv, thread Globals& g, constant Uniforms& u)
//
// The GLSL main function is renamed to gl_main. The stage function main0
// fills Globals from its stage_in struct and built-in parameters, calls
// gl_main, and copies the outputs into its return struct.
//
// # Textures
//
// A GLSL sampler uniform s becomes the texture textures_s and the sampler
// samplers_s, both bound at the layout binding or the declaration index.
// Texture built-ins call generated helpers such as gl_texture2D, which take
// the pair explicitly.
//
// # Type Mapping
//
//	GLSL           MSL
//	----           ---
//	vec4           float4
//	ivec2          int2
//	mat3           float3x3
//	float[4]       array<float, 4>
//	sampler2D      texture2d<float> + sampler
//	samplerCube    texturecube<float> + sampler
//	sampler2DShadow depth2d<float> + sampler
//
// Matrices are column-major in both languages, so products keep their
// GLSL operand order.
//
// # Interface Matching
//
// Vertex attributes use [[attribute(location)]]. Varyings use
// [[user(name)]], so the vertex and fragment stages match by name.
// Fragment outputs use [[color(location)]].
package msl
