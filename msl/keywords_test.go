package msl

import "testing"

func TestIsReserved(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"float", true},
		{"constexpr", true},
		{"template", true},
		{"device", true},
		{"threadgroup", true},
		{"kernel", true},
		{"texture2d", true},
		{"depth2d", true},
		{"float4", true},
		{"half3x2", true},
		{"uint3", true},
		{"discard_fragment", true},
		{"__anything", true},
		{"position", false},
		{"uv", false},
		{"float5", false},
		{"Float4", false},
	}
	for _, tt := range tests {
		if got := IsReserved(tt.input); got != tt.expected {
			t.Errorf("IsReserved(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestEscape(t *testing.T) {
	tests := []struct{ in, want string }{
		{"vertex", "vertex_"},
		{"float2", "float2_"},
		{"color", "color"},
	}
	for _, tt := range tests {
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if IsReserved(Escape(tt.in)) {
			t.Errorf("Escape(%q) is still reserved", tt.in)
		}
	}
}

func TestNamer(t *testing.T) {
	n := newNamer()
	if got := n.call("tex"); got != "tex" {
		t.Errorf("call(\"tex\") = %q, want \"tex\"", got)
	}
	if got := n.call("tex"); got != "tex_1" {
		t.Errorf("second call(\"tex\") = %q, want \"tex_1\"", got)
	}
	if got, again := n.name("uv"), n.name("uv"); got != again {
		t.Errorf("name(\"uv\") changed from %q to %q", got, again)
	}
	if got := n.name("kernel"); got != "kernel_" {
		t.Errorf("name(\"kernel\") = %q, want \"kernel_\"", got)
	}
	for _, name := range generatedNames {
		if got := n.name(name); got == name {
			t.Errorf("name(%q) returned the generated name", name)
		}
	}
}
