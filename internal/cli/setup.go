package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conango/conango/pkg/cmake"
	"github.com/conango/conango/pkg/conan"
	"github.com/conango/conango/pkg/errors"
	"github.com/conango/conango/pkg/logging"
	"github.com/conango/conango/pkg/setup"
)

// setupOpts holds the command-line flags for the setup command.
type setupOpts struct {
	config       string   // path to the conango.toml manifest
	conanfile    string   // folder holding conanfile.py or conanfile.txt
	outputFolder string   // root folder for Conan-generated files
	profile      string   // Conan profile name
	buildType    string   // CMake build type: Release or Debug
	requirements []string // direct requirements, e.g. "fmt/10.2.1"
	recipes      []string // local recipe folders to export into the cache
	settings     []string // profile setting overrides as key=value
	env          []string // environment overrides for Conan calls as key=value
	sourceDir    string   // CMake source directory
	buildDir     string   // CMake build directory
	graph        bool     // write the dependency graph artifact
	report       bool     // print the dependency report
	noBuild      bool     // resolve dependencies but skip the CMake build
}

// setupCommand creates the setup command, the main workflow entry point.
// It resolves dependencies through Conan and runs the wrapped CMake build
// with the generated toolchain flags.
func (c *CLI) setupCommand() *cobra.Command {
	var opts setupOpts

	cmd := &cobra.Command{
		Use:   "setup [-- cmake-args...]",
		Short: "Resolve dependencies and run the wrapped CMake build",
		Long: `Setup resolves C/C++ dependencies through Conan and runs the wrapped
CMake build with the generated toolchain flags. Configuration comes from
conango.toml in the working directory; command-line flags win over
manifest values. Arguments after -- are passed to CMake unchanged.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conan.LoadConfig(opts.config)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			var cmakeArgs []string
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				cmakeArgs = args[dash:]
			}

			options, err := mergeOptions(cfg, opts, cmakeArgs)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			options.LogLevel = &c.level
			options.Build = c.buildFunc(opts)

			return setup.Setup(cmd.Context(), options)
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", conan.ConfigFilename, "project manifest path")
	cmd.Flags().StringVar(&opts.conanfile, "conanfile", "", "folder holding conanfile.py or conanfile.txt")
	cmd.Flags().StringVarP(&opts.outputFolder, "output-folder", "o", "", "root folder for Conan-generated files")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Conan profile name")
	cmd.Flags().StringVar(&opts.buildType, "build-type", "Release", "CMake build type: Release or Debug")
	cmd.Flags().StringSliceVarP(&opts.requirements, "requires", "r", nil, "direct requirement, e.g. fmt/10.2.1 (repeatable)")
	cmd.Flags().StringSliceVar(&opts.recipes, "recipe", nil, "local recipe folder to export into the cache (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.settings, "setting", "s", nil, "profile setting override as key=value (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.env, "env", "e", nil, "environment override for Conan calls as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.sourceDir, "source-dir", "S", ".", "CMake source directory")
	cmd.Flags().StringVarP(&opts.buildDir, "build-dir", "B", "build", "CMake build directory")
	cmd.Flags().BoolVar(&opts.graph, "graph", false, "write the dependency graph (DOT+SVG) to the output folder")
	cmd.Flags().BoolVar(&opts.report, "report", false, "print the dependency report after installation")
	cmd.Flags().BoolVar(&opts.noBuild, "no-build", false, "resolve dependencies but skip the CMake build")

	return cmd
}

// buildFunc returns the wrapped native-build entry point for the setup
// command: a CMake configure+build over the chosen directories, or a dry-run
// printer when --no-build is given.
func (c *CLI) buildFunc(opts setupOpts) setup.BuildFunc {
	if opts.noBuild {
		return func(_ context.Context, generated []string, _ map[string]any) error {
			printInfo("skipping CMake build")
			printNextStep("configure your build",
				"cmake -S "+opts.sourceDir+" -B "+opts.buildDir+" "+strings.Join(generated, " "))
			return nil
		}
	}
	builder := cmake.New(opts.sourceDir, opts.buildDir)
	builder.BuildType(opts.buildType)
	builder.Logger(logging.New(c.level))
	return func(ctx context.Context, generated []string, _ map[string]any) error {
		return builder.Run(ctx, generated...)
	}
}

// mergeOptions combines the project manifest with command-line flags into
// workflow options. Flags win over manifest values; the manifest fills in
// whatever the flags leave unset.
func mergeOptions(cfg *conan.Config, opts setupOpts, cmakeArgs []string) (setup.Options, error) {
	settings, err := parseKeyValues(opts.settings)
	if err != nil {
		return setup.Options{}, err
	}
	env, err := parseKeyValues(opts.env)
	if err != nil {
		return setup.Options{}, err
	}

	out := setup.Options{
		Conanfile:    firstOf(opts.conanfile, cfg.Project.Conanfile),
		OutputFolder: firstOf(opts.outputFolder, cfg.Project.OutputFolder),
		Profile:      firstOf(opts.profile, cfg.Project.Profile),
		Requirements: opts.requirements,
		Recipes:      opts.recipes,
		Settings:     settings,
		Env:          env,
		CMakeArgs:    cmakeArgs,
		Graph:        opts.graph,
		Report:       opts.report,
		Args:         []string{"--build-type", opts.buildType},
	}
	if len(out.Requirements) == 0 {
		out.Requirements = cfg.Requirements
	}
	if len(out.Recipes) == 0 {
		out.Recipes = cfg.Recipes
	}
	if len(out.Settings) == 0 {
		out.Settings = cfg.Settings
	}
	if out.Env == nil && len(cfg.Env) > 0 {
		out.Env = cfg.Env
	}
	return out, nil
}

// parseKeyValues turns repeated key=value flags into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.New(errors.CodeInvalidInput, "invalid key=value pair %q", pair)
		}
		out[key] = value
	}
	return out, nil
}

// firstOf returns the first non-empty string.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
