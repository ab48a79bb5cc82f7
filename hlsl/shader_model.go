// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// ShaderModel represents a Direct3D shader model.
// Shader Models define the feature set available for shader compilation.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel3_0 is the Direct3D 9 model: combined samplers,
	// uniforms in constant registers, no integer bit operations.
	ShaderModel3_0 ShaderModel = iota

	// ShaderModel4_0 is the Direct3D 10 model with separate texture and
	// sampler objects, constant buffers and system-value semantics.
	ShaderModel4_0

	// ShaderModel4_1 adds gather and cube map arrays (Direct3D 10.1).
	ShaderModel4_1

	// ShaderModel5_0 is the Direct3D 11 model with compute shaders.
	ShaderModel5_0

	// ShaderModel5_1 adds resource arrays and register spaces.
	ShaderModel5_1
)

// String returns a human-readable representation of the shader model.
// Example: "SM 4.1", "SM 5.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "4_1", "5_0"
// Used to construct profiles like "vs_4_1", "ps_5_0".
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// Profile returns the fxc/dxc target profile for a stage prefix such as
// "vs", "ps" or "cs".
func (sm ShaderModel) Profile(stagePrefix string) string {
	return stagePrefix + "_" + sm.ProfileSuffix()
}

// version returns the major and minor version numbers.
func (sm ShaderModel) version() (major, minor uint8) {
	switch sm {
	case ShaderModel3_0:
		return 3, 0
	case ShaderModel4_0:
		return 4, 0
	case ShaderModel4_1:
		return 4, 1
	case ShaderModel5_0:
		return 5, 0
	case ShaderModel5_1:
		return 5, 1
	default:
		return 4, 1
	}
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}

// SeparateSamplers reports whether textures and samplers are distinct
// objects (Texture2D plus SamplerState) instead of combined sampler2D.
func (sm ShaderModel) SeparateSamplers() bool {
	return sm >= ShaderModel4_0
}

// SupportsConstantBuffers reports whether uniforms live in a cbuffer.
func (sm ShaderModel) SupportsConstantBuffers() bool {
	return sm >= ShaderModel4_0
}

// SupportsSystemValues reports whether SV_ semantics such as SV_VertexID
// are available.
func (sm ShaderModel) SupportsSystemValues() bool {
	return sm >= ShaderModel4_0
}

// SupportsCompute returns true if this shader model supports compute
// shaders with groupshared memory.
func (sm ShaderModel) SupportsCompute() bool {
	return sm >= ShaderModel5_0
}

// ParseShaderModel parses "3_0", "4.1", "5", "5_1" and similar spellings.
func ParseShaderModel(s string) (ShaderModel, error) {
	switch s {
	case "3", "3_0", "3.0":
		return ShaderModel3_0, nil
	case "4", "4_0", "4.0":
		return ShaderModel4_0, nil
	case "4_1", "4.1":
		return ShaderModel4_1, nil
	case "5", "5_0", "5.0":
		return ShaderModel5_0, nil
	case "5_1", "5.1":
		return ShaderModel5_1, nil
	}
	return 0, fmt.Errorf("hlsl: unknown shader model %q", s)
}
