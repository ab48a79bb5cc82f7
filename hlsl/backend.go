// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"io"

	"github.com/gogpu/translator/emit"
)

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel selects the target. The zero value is ShaderModel3_0.
	ShaderModel ShaderModel
}

// Emitter writes HLSL for Direct3D 9 (shader model 3) and Direct3D 11
// (shader models 4 and 5).
type Emitter struct {
	options Options
}

var _ emit.Emitter = (*Emitter)(nil)

// NewEmitter returns an HLSL emitter.
func NewEmitter(options Options) *Emitter {
	return &Emitter{options: options}
}

// Emit writes u as HLSL source. Nothing is written when the tree uses a
// construct the shader model cannot express.
func (e *Emitter) Emit(out io.Writer, u *emit.Unit) error {
	if e.options.ShaderModel > ShaderModel5_1 {
		return emit.NewError("hlsl", emit.ErrInvalidVersion, "unknown shader model %d", e.options.ShaderModel)
	}
	w := newWriter(u, e.options)
	if err := w.writeUnit(); err != nil {
		return err
	}
	if _, err := io.WriteString(out, w.String()); err != nil {
		return fmt.Errorf("hlsl: %w", err)
	}
	return nil
}
