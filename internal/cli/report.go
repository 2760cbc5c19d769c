package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conango/conango/pkg/conan"
	"github.com/conango/conango/pkg/errors"
	"github.com/conango/conango/pkg/logging"
)

// reportCommand creates the report command. It regenerates the dependency
// report for the current configuration and prints it to stdout.
func (c *CLI) reportCommand() *cobra.Command {
	var opts setupOpts

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dependency report for the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conan.LoadConfig(opts.config)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			merged, err := mergeOptions(cfg, opts, nil)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			helper, err := conan.New(cmd.Context(), conan.Options{
				OutputFolder: merged.OutputFolder,
				LocalRecipes: merged.Recipes,
				Settings:     merged.Settings,
				Profile:      merged.Profile,
				Env:          merged.Env,
				BuildType:    opts.buildType,
				Logger:       logging.New(logging.Quiet),
			})
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			spinner := newSpinner(cmd.Context(), "querying the Conan cache")
			spinner.Start()
			report := helper.GenerateDependencyReport(cmd.Context(), merged.Requirements)
			spinner.Stop()

			fmt.Println(report)
			printFile(filepath.Join(helper.OutputDir(), conan.ReportFilename))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", conan.ConfigFilename, "project manifest path")
	cmd.Flags().StringVarP(&opts.outputFolder, "output-folder", "o", "", "root folder for Conan-generated files")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Conan profile name")
	cmd.Flags().StringVar(&opts.buildType, "build-type", "Release", "CMake build type: Release or Debug")
	cmd.Flags().StringSliceVarP(&opts.requirements, "requires", "r", nil, "direct requirement, e.g. fmt/10.2.1 (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.settings, "setting", "s", nil, "profile setting override as key=value (repeatable)")

	return cmd
}
