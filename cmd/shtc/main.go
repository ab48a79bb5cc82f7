// Command shtc translates GLSL ES shaders to desktop GLSL, ESSL, HLSL and
// Metal.
//
// Usage:
//
//	shtc translate [flags] file...
//	shtc profiles
//	shtc version
//
// Examples:
//
//	shtc translate blur.frag                          # GLSL 3.30 core to stdout
//	shtc translate -p hlsl5 -o out shaders/*.vert     # one .hlsl file per shader
//	shtc translate -p msl --reflect -o out a.frag     # also write a.frag.reflect.msgpack
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shtc",
		Short:         "GLSL ES shader translator",
		Long:          `shtc translates GLSL ES shaders to desktop GLSL, ESSL, HLSL and Metal`,
		Version:       toolVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupOutput(cmd)
		},
	}

	root.AddCommand(newTranslateCmd())
	root.AddCommand(newProfilesCmd())
	root.AddCommand(newVersionCmd())

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("debug", false, "log every pass")
	root.PersistentFlags().BoolP("verbose", "v", false, "log progress")
	root.PersistentFlags().BoolP("quiet", "q", false, "log errors only")
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("error:"), err)
		os.Exit(1)
	}
}

// setupOutput applies the global flags: color mode and log level.
func setupOutput(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	mode, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		// fatih/color already disables itself when stdout is not a terminal.
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}

	debug, _ := flags.GetBool("debug")
	verbose, _ := flags.GetBool("verbose")
	quiet, _ := flags.GetBool("quiet")
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: levelFromFlags(debug, verbose, quiet)})
	slog.SetDefault(slog.New(handler))
	return nil
}

// levelFromFlags returns the log level for the --debug, --verbose and
// --quiet flags, in that order of precedence.
func levelFromFlags(debug, verbose, quiet bool) slog.Level {
	switch {
	case debug:
		return slog.LevelDebug
	case verbose:
		return slog.LevelInfo
	case quiet:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
