package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conango/conango/pkg/conan"
	"github.com/conango/conango/pkg/errors"
	"github.com/conango/conango/pkg/execx"
	"github.com/conango/conango/pkg/logging"
)

// doctorCommand creates the doctor command. It probes the installed Conan
// and CMake binaries, runs the version gate, and prints what it found.
func (c *CLI) doctorCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the installed Conan and CMake toolchain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fmt.Println(StyleTitle.Render(appName + " doctor"))

			track := newProgress(c.Logger)
			spinner := newSpinner(ctx, "probing the toolchain")
			spinner.Start()

			helper, err := conan.New(ctx, conan.Options{
				Logger: logging.New(logging.Quiet),
			})
			if err != nil {
				spinner.StopWithError(errors.UserMessage(err))
				return err
			}
			conanVersion, err := helper.Version(ctx)
			if err != nil {
				spinner.StopWithError(errors.UserMessage(err))
				return err
			}
			cmakeVersion := probeCMake(ctx)
			spinner.Stop()

			printKeyValue("conan", conanVersion)
			printKeyValue("cmake", cmakeVersion)
			printKeyValue("profile", helper.Profile())
			printKeyValue("output dir", helper.OutputDir())

			cfg, err := conan.LoadConfig(configPath)
			switch {
			case err != nil:
				printWarning("manifest %s is unreadable: %s", configPath, errors.UserMessage(err))
			case len(cfg.Requirements) > 0 || len(cfg.Recipes) > 0:
				printKeyValue("manifest", fmt.Sprintf("%s (%d requirements, %d recipes)",
					configPath, len(cfg.Requirements), len(cfg.Recipes)))
			default:
				printInfo("no %s manifest in the working directory", configPath)
			}

			printSuccess("toolchain looks good")
			track.done("doctor checks finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", conan.ConfigFilename, "project manifest path")

	return cmd
}

// probeCMake returns the first line of `cmake --version`, or a note when the
// binary is missing.
func probeCMake(ctx context.Context) string {
	stdout, _, err := execx.NewRunner().Run(ctx, "", "cmake", "--version")
	if err != nil {
		return "not found (install CMake >= 3.15)"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(stdout)), "\n")
	return strings.TrimPrefix(line, "cmake version ")
}
