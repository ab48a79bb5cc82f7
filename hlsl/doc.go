// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl generates HLSL (High-Level Shading Language) source from a
// translated GLSL ES tree.
//
// Output targets the FXC compiler: shader model 3.0 for Direct3D 9, and
// shader models 4.x and 5.x for Direct3D 11. Compute shaders require
// shader model 5.0.
//
// # Usage
//
//	e := hlsl.NewEmitter(hlsl.Options{ShaderModel: hlsl.ShaderModel5_0})
//	if err := e.Emit(&buf, unit); err != nil {
//	    log.Fatal(err)
//	}
//
// # Program Structure
//
// Every GLSL global keeps its name, escaped where it clashes with an HLSL
// keyword or intrinsic. Stage inputs, stage outputs and built-in variables
// become static variables. The GLSL main function is renamed to gl_main
// and wrapped by an entry point named main, which copies its input struct
// into the statics, calls gl_main and copies the statics into its output
// struct.
//
// Non-sampler uniforms live in one constant buffer:
//
//	cbuffer Uniforms : register(b0)  // shader model 4 and later
//	uniform float4 u_color;          // shader model 3
//
// From shader model 4 on, each sampler uniform s becomes a texture object
// textures_s in register tN and a sampler object samplers_s in register
// sN, where N is the layout binding or the declaration index.
//
// # Semantics
//
// Attributes use TEXCOORD<location>. Varyings are sorted by name and
// numbered TEXCOORD0, TEXCOORD1, ... in both stages. Fragment outputs use
// SV_Target<location>, or COLOR<n> in shader model 3.
//
// # Matrices
//
// GLSL matCxR maps to floatCxR. Since HLSL indexes rows where GLSL
// indexes columns, m[i] selects the same vector in both languages, and
// products are written as mul with the operands swapped.
package hlsl
