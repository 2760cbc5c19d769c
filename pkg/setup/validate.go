package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conango/conango/pkg/errors"
)

// Validate checks the caller-supplied configuration before any expensive
// Conan operation runs. All detected problems are aggregated into a single
// INVALID_INPUT error so the user can fix everything in one pass:
//
//   - every requirement must contain a name/version separator
//   - a non-default conanfile path must exist
//   - every recipe path must exist and contain a conanfile.py
//   - an explicit conanfile path and explicit requirements are mutually
//     exclusive
func Validate(conanfile string, recipes, requirements []string) error {
	var problems []string

	for _, req := range requirements {
		if req == "" || !strings.Contains(req, "/") {
			problems = append(problems, fmt.Sprintf(
				"invalid requirement format: %q. Expected 'package/version', 'package/[>=version]', or 'package/version@user/channel'",
				req))
		}
	}

	if conanfile != "." && conanfile != "" {
		if _, err := os.Stat(conanfile); err != nil {
			problems = append(problems, fmt.Sprintf("conanfile path does not exist: %s", conanfile))
		}
	}

	for _, recipe := range recipes {
		if _, err := os.Stat(recipe); err != nil {
			problems = append(problems, fmt.Sprintf("recipe path does not exist: %s", recipe))
			continue
		}
		if _, err := os.Stat(filepath.Join(recipe, "conanfile.py")); err != nil {
			problems = append(problems, fmt.Sprintf("recipe path missing conanfile.py: %s", recipe))
		}
	}

	if len(requirements) > 0 && conanfile != "." && conanfile != "" {
		problems = append(problems,
			"cannot specify both a conanfile path and explicit requirements; use requirements for simple cases or a conanfile for complex setups")
	}

	if len(problems) > 0 {
		return errors.New(errors.CodeInvalidInput, "invalid configuration:\n  - %s",
			strings.Join(problems, "\n  - "))
	}
	return nil
}
