package essl

import (
	"strconv"
	"strings"

	"github.com/gogpu/translator/ir"
)

// preprocess handles the directive tokens and returns the remaining token
// stream. Directives take effect for the whole shader.
func (c *context) preprocess(tokens []Token) []Token {
	out := tokens[:0:0]
	seenCode := false
	seenDirective := false
	for _, tok := range tokens {
		if tok.Kind != TokenDirective {
			if tok.Kind != TokenEOF {
				seenCode = true
			}
			out = append(out, tok)
			continue
		}
		pos := ir.Pos{Line: tok.Line, Column: tok.Column}
		fields := directiveFields(tok.Lexeme)
		if len(fields) == 0 {
			// A lone '#' is the null directive.
			continue
		}
		switch fields[0] {
		case "version":
			if seenCode || seenDirective {
				c.errorf(pos, "'#version' : #version directive must occur before anything else, except for comments and white space")
				continue
			}
			c.versionDirective(pos, fields[1:])
		case "extension":
			if seenCode && c.isESSL3() {
				c.errorf(pos, "'#extension' : extension directive must occur before any non-preprocessor tokens in ESSL3")
				continue
			}
			c.extensionDirective(pos, fields[1:])
		case "pragma":
			c.pragmaDirective(pos, fields[1:])
		case "define", "undef", "if", "ifdef", "ifndef", "else", "elif", "endif", "line", "error":
			c.errorf(pos, "'#%s' : preprocessor directive is not supported", fields[0])
		default:
			c.errorf(pos, "'#%s' : invalid directive name", fields[0])
		}
		seenDirective = true
	}

	if c.stage == ir.StageCompute && c.version < 310 {
		c.errorf(ir.Pos{Line: 1}, "'compute shader' : supported in GLSL ES 3.10 and above only")
	}
	return out
}

// directiveFields splits a directive line into words and punctuation.
func directiveFields(line string) []string {
	line = strings.TrimPrefix(strings.TrimSpace(line), "#")
	r := strings.NewReplacer(":", " : ", "(", " ( ", ")", " ) ")
	return strings.Fields(r.Replace(line))
}

func (c *context) versionDirective(pos ir.Pos, args []string) {
	if len(args) == 0 {
		c.errorf(pos, "'#version' : version number expected")
		return
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		c.errorf(pos, "'%s' : invalid version number", args[0])
		return
	}
	switch v {
	case 100:
		if len(args) > 1 {
			c.errorf(pos, "'%s' : invalid version profile", args[1])
			return
		}
	case 300, 310:
		if len(args) != 2 || args[1] != "es" {
			c.errorf(pos, "'#version' : versions above 100 require the 'es' profile")
			return
		}
	default:
		c.errorf(pos, "'%d' : version number not supported", v)
		return
	}
	if v > c.opts.MaxVersion {
		c.errorf(pos, "'%d' : version number not supported by this context", v)
		return
	}
	c.version = v
}

func (c *context) extensionDirective(pos ir.Pos, args []string) {
	if len(args) != 3 || args[1] != ":" {
		c.errorf(pos, "'#extension' : extension name and behavior expected")
		return
	}
	name := args[0]
	var behavior ExtensionBehavior
	switch args[2] {
	case "require":
		behavior = ExtensionRequire
	case "enable":
		behavior = ExtensionEnable
	case "warn":
		behavior = ExtensionWarn
	case "disable":
		behavior = ExtensionDisable
	default:
		c.errorf(pos, "'%s' : behavior invalid", args[2])
		return
	}

	if name == "all" {
		if behavior == ExtensionRequire || behavior == ExtensionEnable {
			c.errorf(pos, "'all' : extension 'all' cannot have 'require' or 'enable' behavior")
			return
		}
		for ext := range c.opts.Extensions {
			c.extensions[ext] = behavior
		}
		return
	}

	if !c.opts.Extensions[name] {
		if behavior == ExtensionRequire {
			c.errorf(pos, "'%s' : extension is not supported", name)
		} else {
			c.warnf(pos, "'%s' : extension is not supported", name)
		}
		return
	}
	c.extensions[name] = behavior
}

func (c *context) pragmaDirective(pos ir.Pos, args []string) {
	joined := strings.Join(args, "")
	switch joined {
	case "STDGLinvariant(all)":
		if c.stage == ir.StageFragment && c.isESSL3() {
			c.errorf(pos, "'invariant' : #pragma STDGL invariant(all) can not be used in fragment shader")
			return
		}
		c.pragma.InvariantAll = true
	case "optimize(on)":
		c.pragma.Optimize = true
	case "optimize(off)":
		c.pragma.Optimize = false
	case "debug(on)":
		c.pragma.Debug = true
	case "debug(off)":
		c.pragma.Debug = false
	default:
		// Unknown pragmas are ignored.
	}
}
