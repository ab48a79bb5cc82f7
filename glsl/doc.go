// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl writes translated shaders as desktop GLSL or GLSL ES.
//
// The emitter targets the version resolved by the compiler driver, which
// is never lower than the version the shader needs:
//
//   - GLSL ES 1.00, 3.00 and 3.10 for ESSL output profiles
//   - GLSL 1.10 (compatibility) through 4.60 core for desktop profiles
//
// # Basic Usage
//
//	e := glsl.NewEmitter(glsl.Options{Core: true})
//	err := e.Emit(&buf, unit)
//
// # Interface variables
//
// For GLSL 1.30 and GLSL ES 3.00 and later, attribute and varying become
// in and out, and writes to gl_FragColor and gl_FragData go to declared
// outputs named webgl_FragColor and webgl_FragData. Texture lookups use
// the overloaded texture functions. gl_DrawID becomes gl_DrawIDARB with
// GL_ARB_shader_draw_parameters on desktop versions before 4.60.
//
// # Reserved Words
//
// ESSL 1.00 reserves fewer words than later versions. User identifiers
// that are keywords, built-in function names or start with gl_ or webgl_
// in any GLSL version are prefixed with "_u".
package glsl
