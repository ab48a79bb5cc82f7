// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestShaderModel_String(t *testing.T) {
	tests := []struct {
		sm   ShaderModel
		want string
	}{
		{ShaderModel3_0, "SM 3.0"},
		{ShaderModel4_0, "SM 4.0"},
		{ShaderModel4_1, "SM 4.1"},
		{ShaderModel5_0, "SM 5.0"},
		{ShaderModel5_1, "SM 5.1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.sm.String(); got != tt.want {
				t.Errorf("ShaderModel.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShaderModel_Profile(t *testing.T) {
	tests := []struct {
		sm     ShaderModel
		prefix string
		want   string
	}{
		{ShaderModel3_0, "vs", "vs_3_0"},
		{ShaderModel4_1, "ps", "ps_4_1"},
		{ShaderModel5_0, "cs", "cs_5_0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.sm.Profile(tt.prefix); got != tt.want {
				t.Errorf("Profile(%q) = %q, want %q", tt.prefix, got, tt.want)
			}
			if got := tt.sm.ProfileSuffix(); got != tt.want[3:] {
				t.Errorf("ProfileSuffix() = %q, want %q", got, tt.want[3:])
			}
		})
	}
}

func TestShaderModel_Features(t *testing.T) {
	tests := []struct {
		sm                        ShaderModel
		separate, cbuffer, compute bool
	}{
		{ShaderModel3_0, false, false, false},
		{ShaderModel4_0, true, true, false},
		{ShaderModel4_1, true, true, false},
		{ShaderModel5_0, true, true, true},
		{ShaderModel5_1, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.sm.String(), func(t *testing.T) {
			if got := tt.sm.SeparateSamplers(); got != tt.separate {
				t.Errorf("SeparateSamplers() = %v, want %v", got, tt.separate)
			}
			if got := tt.sm.SupportsConstantBuffers(); got != tt.cbuffer {
				t.Errorf("SupportsConstantBuffers() = %v, want %v", got, tt.cbuffer)
			}
			if got := tt.sm.SupportsSystemValues(); got != tt.cbuffer {
				t.Errorf("SupportsSystemValues() = %v, want %v", got, tt.cbuffer)
			}
			if got := tt.sm.SupportsCompute(); got != tt.compute {
				t.Errorf("SupportsCompute() = %v, want %v", got, tt.compute)
			}
		})
	}
}

func TestShaderModel_Version(t *testing.T) {
	if ShaderModel4_1.Major() != 4 || ShaderModel4_1.Minor() != 1 {
		t.Errorf("SM 4.1 version = %d.%d", ShaderModel4_1.Major(), ShaderModel4_1.Minor())
	}
	if ShaderModel3_0.Major() != 3 || ShaderModel3_0.Minor() != 0 {
		t.Errorf("SM 3.0 version = %d.%d", ShaderModel3_0.Major(), ShaderModel3_0.Minor())
	}
}

func TestParseShaderModel(t *testing.T) {
	tests := []struct {
		in      string
		want    ShaderModel
		wantErr bool
	}{
		{"3", ShaderModel3_0, false},
		{"3_0", ShaderModel3_0, false},
		{"4.1", ShaderModel4_1, false},
		{"4_1", ShaderModel4_1, false},
		{"5", ShaderModel5_0, false},
		{"5.1", ShaderModel5_1, false},
		{"6_0", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShaderModel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseShaderModel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseShaderModel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
