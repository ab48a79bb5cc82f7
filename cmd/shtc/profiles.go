package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/translator/compiler"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List output profiles, input specs and compile options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeProfiles(cmd.OutOrStdout())
		},
	}
}

func writeProfiles(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(headerColor.Sprint("Output profiles:") + "\n")
	for _, p := range compiler.Profiles() {
		line := fmt.Sprintf("  %-10s %s", p.String(), p.Family())
		if v := p.Version(); v != 0 {
			line += fmt.Sprintf(" %d", v)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString(headerColor.Sprint("Input specs:") + "\n")
	for _, s := range []compiler.Spec{compiler.SpecGLES2, compiler.SpecGLES3, compiler.SpecGLES31, compiler.SpecWebGL, compiler.SpecWebGL2} {
		fmt.Fprintf(&sb, "  %-10s up to #version %d\n", s, s.MaxVersion())
	}

	sb.WriteString(headerColor.Sprint("Compile options:") + "\n")
	for _, name := range compiler.OptionNames() {
		sb.WriteString("  " + name + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
