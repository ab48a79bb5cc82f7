//go:build darwin

package msl

import (
	"testing"

	"github.com/gogpu/translator/ir"
)

func TestMSLCompilesWithXcrun(t *testing.T) {
	tests := []struct {
		name  string
		stage ir.ShaderStage
		src   string
	}{
		{"vertex", ir.StageVertex, transformShader},
		{"fragment", ir.StageFragment, textureShader},
		{"compute", ir.StageCompute, `#version 310 es
layout(local_size_x = 64) in;
shared float partial[64];
void main() {
    partial[int(gl_LocalInvocationIndex)] = float(gl_GlobalInvocationID.x);
    barrier();
}`},
		{"functions", ir.StageFragment, `
precision mediump float;
uniform sampler2D u_tex;
uniform vec4 u_tint;
varying vec2 v_uv;
float counter = 0.0;
vec4 shade(vec2 uv) {
    counter += 1.0;
    return texture2D(u_tex, uv) * u_tint;
}
void main() {
    gl_FragColor = shade(v_uv) + vec4(counter);
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifyMSLWithXcrun(t, compile(t, tt.stage, tt.src))
		})
	}
}
