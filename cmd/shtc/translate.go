package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/translator"
	"github.com/gogpu/translator/compiler"
)

type translateConfig struct {
	profile   compiler.OutputProfile
	spec      compiler.Spec
	stage     string
	resources compiler.Resources
	options   compiler.CompileOptions
	outDir    string
	reflect   bool
	jobs      int
}

// fileResult is the outcome of translating one file. A shader that does
// not compile has a nil res and its diagnostics in infoLog.
type fileResult struct {
	path    string
	res     *translator.Result
	infoLog string
}

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [flags] file...",
		Short: "Translate GLSL ES shaders",
		Long: `Translate compiles each file for the output profile. The shader stage
comes from the file extension (.vert, .frag, .comp) unless --stage is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTranslate,
	}
	flags := cmd.Flags()
	flags.StringP("profile", "p", compiler.OutputGLSL330.String(), "output profile (see shtc profiles)")
	flags.String("spec", compiler.SpecGLES3.String(), "input spec: gles2, gles3, gles31, webgl or webgl2")
	flags.String("stage", "", "shader stage for every file (vertex|fragment|compute)")
	flags.String("resources", "", "TOML file with extensions and limits")
	flags.String("options", "", "extra compile options separated by '|' or ','")
	flags.Bool("dump-tree", false, "print the translated tree")
	flags.StringP("out-dir", "o", "", "write one file per shader into this directory instead of stdout")
	flags.Bool("reflect", false, "also write <file>.reflect.msgpack (requires --out-dir)")
	flags.IntP("jobs", "j", 0, "max parallel translations (0 = GOMAXPROCS)")
	return cmd
}

func configFromFlags(cmd *cobra.Command) (translateConfig, error) {
	var cfg translateConfig
	flags := cmd.Flags()

	name, _ := flags.GetString("profile")
	profile, err := compiler.ParseOutputProfile(name)
	if err != nil {
		return cfg, err
	}
	cfg.profile = profile

	name, _ = flags.GetString("spec")
	if cfg.spec, err = compiler.ParseSpec(name); err != nil {
		return cfg, err
	}

	cfg.stage, _ = flags.GetString("stage")
	if cfg.stage != "" {
		if _, err := translator.ParseStage(cfg.stage); err != nil {
			return cfg, err
		}
	}

	cfg.resources = compiler.DefaultResources()
	if path, _ := flags.GetString("resources"); path != "" {
		if cfg.resources, err = compiler.LoadResources(path); err != nil {
			return cfg, err
		}
	}

	opts, _ := flags.GetString("options")
	if cfg.options, err = compiler.ParseOptions(opts); err != nil {
		return cfg, err
	}
	cfg.options |= compiler.ObjectCode
	if dump, _ := flags.GetBool("dump-tree"); dump {
		cfg.options |= compiler.IntermediateTree
	}

	cfg.outDir, _ = flags.GetString("out-dir")
	cfg.reflect, _ = flags.GetBool("reflect")
	if cfg.reflect {
		if cfg.outDir == "" {
			return cfg, errors.New("--reflect requires --out-dir")
		}
		cfg.options |= compiler.Variables
	}
	cfg.jobs, _ = flags.GetInt("jobs")
	return cfg, nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	results, err := translateFiles(cmd.Context(), args, cfg)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.infoLog != "" {
			if err := writeInfoLog(cmd.ErrOrStderr(), r.path, r.infoLog); err != nil {
				return err
			}
		}
		if r.res == nil {
			failed++
			continue
		}
		if err := writeResult(cmd.OutOrStdout(), r, cfg); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d shaders failed to compile", failed, len(results))
	}
	return nil
}

// translateFiles translates files in parallel. Results are in the order
// of files. The error is only set for failures other than compile errors.
func translateFiles(ctx context.Context, files []string, cfg translateConfig) ([]fileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	jobs := cfg.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes only its own index.
	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := translateFile(path, cfg)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func translateFile(path string, cfg translateConfig) (fileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return fileResult{}, err
	}
	stageName := cfg.stage
	stage, err := translator.StageFromPath(path)
	if stageName != "" {
		stage, err = translator.ParseStage(stageName)
	}
	if err != nil {
		return fileResult{}, err
	}

	slog.Info("translating", "file", path, "stage", stage, "profile", cfg.profile)
	res, err := translator.Translate(stage, string(src), translator.Options{
		Spec:      cfg.spec,
		Profile:   cfg.profile,
		Resources: cfg.resources,
		Compile:   cfg.options,
		Logger:    slog.Default().With("file", path),
	})
	var ce *translator.CompileError
	switch {
	case errors.As(err, &ce):
		return fileResult{path: path, infoLog: ce.InfoLog}, nil
	case err != nil:
		return fileResult{}, fmt.Errorf("%s: %w", path, err)
	}
	return fileResult{path: path, res: res, infoLog: res.InfoLog}, nil
}

// outputExt returns the file extension of object code for profile.
func outputExt(profile compiler.OutputProfile) string {
	switch profile.Family() {
	case compiler.FamilyESSL:
		return ".essl"
	case compiler.FamilyHLSL:
		return ".hlsl"
	case compiler.FamilyMSL:
		return ".metal"
	}
	return ".glsl"
}

func writeResult(stdout io.Writer, r fileResult, cfg translateConfig) error {
	if cfg.outDir == "" {
		_, err := io.WriteString(stdout, r.res.Code)
		return err
	}
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return err
	}
	base := filepath.Join(cfg.outDir, filepath.Base(r.path))
	out := base + outputExt(cfg.profile)
	if err := os.WriteFile(out, []byte(r.res.Code), 0o644); err != nil {
		return err
	}
	slog.Info("wrote", "file", out)

	if !cfg.reflect {
		return nil
	}
	data, err := compiler.MarshalReflection(r.res.Reflection)
	if err != nil {
		return fmt.Errorf("%s: %w", r.path, err)
	}
	out = base + ".reflect.msgpack"
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	slog.Info("wrote", "file", out)
	return nil
}
