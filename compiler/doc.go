// Package compiler drives a GLSL ES shader through parsing, resource
// checks, the translation passes and one output emitter.
//
// The process-wide built-in table must exist before any compiler is
// constructed:
//
//	compiler.Initialize()
//	defer compiler.Finalize()
//
//	c, err := compiler.Construct(ir.StageFragment, compiler.SpecGLES3, compiler.OutputGLSL330)
//	if err != nil {
//		return err
//	}
//	defer c.Destroy()
//	if err := c.Init(compiler.DefaultResources()); err != nil {
//		return err
//	}
//	if !c.Compile([]string{src}, compiler.ObjectCode|compiler.Variables) {
//		return errors.New(c.InfoLog())
//	}
//	fmt.Print(c.ObjectCode())
//
// Each Compiler owns its symbols and diagnostics; compilers may run on
// separate goroutines at the same time.
package compiler
