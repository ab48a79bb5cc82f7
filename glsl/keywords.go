// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// ESSL 1.00 reserves far fewer words than desktop GLSL and GLSL ES 3.x, so
// identifiers that were legal in the source can collide in the output.
// The lists cover GLSL 4.60 and GLSL ES 3.20 keywords, reserved words and
// the built-in functions a user function could shadow.
var reservedLists = []string{
	// Types
	`void bool int uint float double
	vec2 vec3 vec4 ivec2 ivec3 ivec4 uvec2 uvec3 uvec4 bvec2 bvec3 bvec4 dvec2 dvec3 dvec4
	mat2 mat3 mat4 mat2x2 mat2x3 mat2x4 mat3x2 mat3x3 mat3x4 mat4x2 mat4x3 mat4x4
	dmat2 dmat3 dmat4 dmat2x2 dmat2x3 dmat2x4 dmat3x2 dmat3x3 dmat3x4 dmat4x2 dmat4x3 dmat4x4
	atomic_uint`,

	// Samplers and images, float, int and uint flavors
	`sampler1D sampler2D sampler3D samplerCube sampler2DRect samplerBuffer sampler2DMS
	sampler1DArray sampler2DArray samplerCubeArray sampler2DMSArray
	sampler1DShadow sampler2DShadow samplerCubeShadow sampler2DRectShadow
	sampler1DArrayShadow sampler2DArrayShadow samplerCubeArrayShadow samplerExternalOES
	isampler1D isampler2D isampler3D isamplerCube isampler2DRect isamplerBuffer isampler2DMS
	isampler1DArray isampler2DArray isamplerCubeArray isampler2DMSArray
	usampler1D usampler2D usampler3D usamplerCube usampler2DRect usamplerBuffer usampler2DMS
	usampler1DArray usampler2DArray usamplerCubeArray usampler2DMSArray
	image1D image2D image3D imageCube image2DRect imageBuffer image2DMS
	image1DArray image2DArray imageCubeArray image2DMSArray
	iimage1D iimage2D iimage3D iimageCube iimage2DRect iimageBuffer iimage2DMS
	iimage1DArray iimage2DArray iimageCubeArray iimage2DMSArray
	uimage1D uimage2D uimage3D uimageCube uimage2DRect uimageBuffer uimage2DMS
	uimage1DArray uimage2DArray uimageCubeArray uimage2DMSArray`,

	// Keywords
	`attribute const uniform varying buffer shared coherent volatile restrict readonly writeonly
	layout centroid flat smooth noperspective patch sample subroutine
	break continue do for while switch case default if else
	in out inout true false invariant precise discard return struct
	lowp mediump highp precision`,

	// Reserved for future use
	`common partition active asm class union enum typedef template this resource goto
	inline noinline public static extern external interface long short half fixed unsigned
	superp input output hvec2 hvec3 hvec4 fvec2 fvec3 fvec4 sampler3DRect filter sizeof cast
	namespace using`,

	// Built-in functions missing from ESSL 1.00
	`sinh cosh tanh asinh acosh atanh trunc round roundEven modf isnan isinf
	floatBitsToInt floatBitsToUint intBitsToFloat uintBitsToFloat fma frexp ldexp
	packUnorm2x16 packSnorm2x16 packUnorm4x8 packSnorm4x8 unpackUnorm2x16 unpackSnorm2x16
	unpackUnorm4x8 unpackSnorm4x8 packHalf2x16 unpackHalf2x16 packDouble2x32 unpackDouble2x32
	outerProduct transpose determinant inverse
	uaddCarry usubBorrow umulExtended imulExtended bitfieldExtract bitfieldInsert
	bitfieldReverse bitCount findLSB findMSB
	texture textureSize textureQueryLod textureQueryLevels textureSamples textureProj
	textureLod textureOffset texelFetch texelFetchOffset textureProjLod textureProjOffset
	textureLodOffset textureProjLodOffset textureGrad textureGradOffset textureProjGrad
	textureProjGradOffset textureGather textureGatherOffset textureGatherOffsets
	dFdxFine dFdyFine dFdxCoarse dFdyCoarse fwidthFine fwidthCoarse
	interpolateAtCentroid interpolateAtSample interpolateAtOffset noise1 noise2 noise3 noise4
	EmitStreamVertex EndStreamPrimitive EmitVertex EndPrimitive
	barrier memoryBarrier memoryBarrierAtomicCounter memoryBarrierBuffer memoryBarrierShared
	memoryBarrierImage groupMemoryBarrier imageLoad imageStore imageAtomicAdd imageAtomicMin
	imageAtomicMax imageAtomicAnd imageAtomicOr imageAtomicXor imageAtomicExchange
	imageAtomicCompSwap imageSize imageSamples atomicCounterIncrement atomicCounterDecrement
	atomicCounter atomicAdd atomicMin atomicMax atomicAnd atomicOr atomicXor atomicExchange
	atomicCompSwap subpassLoad`,
}

// reservedPrefixes may not start a user identifier in any GLSL version.
var reservedPrefixes = []string{"gl_", "webgl_", "_webgl_"}

var glslKeywords = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, list := range reservedLists {
		for _, w := range strings.Fields(list) {
			m[w] = struct{}{}
		}
	}
	return m
}()

// isKeyword checks if a name is a GLSL keyword, reserved word or a
// built-in function name.
func isKeyword(name string) bool {
	_, ok := glslKeywords[name]
	return ok
}

// escapeKeyword prefixes a user identifier with "_u" if it is reserved in
// some GLSL version or starts with a reserved prefix.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	if isKeyword(name) {
		return "_u" + name
	}
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(name, p) {
			return "_u" + name
		}
	}
	return name
}
