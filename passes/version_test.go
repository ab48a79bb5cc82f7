package passes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gogpu/translator/ir"
)

func TestResolveTargetVersion(t *testing.T) {
	tests := []struct {
		family  VersionFamily
		profile int
		signals VersionSignals
		want    int
	}{
		{FamilyGLSLCompatibility, 0, VersionSignals{Stage: ir.StageVertex, SourceVersion: 100}, 110},
		{FamilyGLSLCompatibility, 0, VersionSignals{Stage: ir.StageVertex, InvariantAll: true, SourceVersion: 100}, 120},
		{FamilyGLSLCompatibility, 0, VersionSignals{Stage: ir.StageFragment, SourceVersion: 300}, 130},
		{FamilyGLSLCompatibility, 0, VersionSignals{Stage: ir.StageCompute, SourceVersion: 310}, 430},
		{FamilyGLSLCore, 330, VersionSignals{Stage: ir.StageVertex, InvariantAll: true, SourceVersion: 300}, 330},
		{FamilyGLSLCore, 330, VersionSignals{Stage: ir.StageCompute, SourceVersion: 310}, 430},
		{FamilyGLSLCore, 450, VersionSignals{Stage: ir.StageCompute, SourceVersion: 310}, 450},
		{FamilyESSL, 100, VersionSignals{Stage: ir.StageFragment, SourceVersion: 100}, 100},
		{FamilyESSL, 100, VersionSignals{Stage: ir.StageFragment, SourceVersion: 300}, 300},
		{FamilyESSL, 300, VersionSignals{Stage: ir.StageCompute, SourceVersion: 310}, 310},
		{FamilyESSL, 300, VersionSignals{Stage: ir.StageVertex, InvariantAll: true, SourceVersion: 100}, 300},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d/%+v", tt.family, tt.profile, tt.signals), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTargetVersion(tt.family, tt.profile, tt.signals))
		})
	}
}

func TestResolveTargetVersionComputeMinimum(t *testing.T) {
	for _, profile := range []int{0, 130, 330, 420} {
		v := ResolveTargetVersion(FamilyGLSLCore, profile, VersionSignals{Stage: ir.StageCompute, SourceVersion: 310})
		assert.GreaterOrEqual(t, v, GLSLVersion430)
	}
	v := ResolveTargetVersion(FamilyESSL, 100, VersionSignals{Stage: ir.StageCompute, SourceVersion: 310})
	assert.GreaterOrEqual(t, v, ESSLVersion310)
}

func TestResolveTargetVersionIsMonotonic(t *testing.T) {
	stages := []ir.ShaderStage{ir.StageVertex, ir.StageFragment, ir.StageCompute}
	sources := []int{100, 300, 310}
	families := []struct {
		family  VersionFamily
		profile int
	}{
		{FamilyGLSLCompatibility, 0},
		{FamilyGLSLCore, 130},
		{FamilyGLSLCore, 330},
		{FamilyGLSLCore, 440},
		{FamilyESSL, 100},
		{FamilyESSL, 300},
	}

	for _, f := range families {
		for _, stage := range stages {
			for _, src := range sources {
				plain := VersionSignals{Stage: stage, SourceVersion: src}
				withPragma := plain
				withPragma.InvariantAll = true

				base := ResolveTargetVersion(f.family, f.profile, plain)
				raised := ResolveTargetVersion(f.family, f.profile, withPragma)
				assert.GreaterOrEqual(t, raised, base)
				if f.family != FamilyGLSLCompatibility {
					assert.GreaterOrEqual(t, base, f.profile)
				}
				if f.family != FamilyESSL {
					assert.GreaterOrEqual(t, raised, GLSLVersion120)
				}
			}
		}
	}
}

func TestEnsureVersion(t *testing.T) {
	var tv TargetVersion
	tv.EnsureVersion(130)
	tv.EnsureVersion(110)
	assert.Equal(t, 130, tv.Version())
	tv.EnsureVersion(430)
	assert.Equal(t, 430, tv.Version())
}
