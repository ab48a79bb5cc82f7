// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestNamer_Call(t *testing.T) {
	n := newNamer()

	if got := n.call("position"); got != "position" {
		t.Errorf("call(\"position\") = %q, want \"position\"", got)
	}
	if got := n.call("position"); got != "position_1" {
		t.Errorf("second call(\"position\") = %q, want \"position_1\"", got)
	}
	if got := n.call("normal"); got != "normal" {
		t.Errorf("call(\"normal\") = %q, want \"normal\"", got)
	}
}

func TestNamer_NameIsStable(t *testing.T) {
	n := newNamer()

	first := n.name("color")
	if again := n.name("color"); again != first {
		t.Errorf("name(\"color\") changed from %q to %q", first, again)
	}
	if got := n.name("Color"); got == "Color" {
		t.Error("Color should not reuse a name that differs only in case")
	}
}

func TestNamer_ReservedKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"float", "_float"},
		{"lerp", "_lerp"},
		{"sample", "_sample"},
		{"float3x3", "_float3x3"},
		{"Technique", "_Technique"},
		{"uv", "uv"},
	}
	for _, tt := range tests {
		n := newNamer()
		if got := n.name(tt.input); got != tt.want {
			t.Errorf("name(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNamer_GeneratedNamesAreReserved(t *testing.T) {
	n := newNamer()
	for _, name := range generatedNames {
		if !n.isUsed(name) {
			t.Errorf("%q is not reserved", name)
		}
		if got := n.name(name); got == name {
			t.Errorf("name(%q) returned the generated name", name)
		}
	}
}
