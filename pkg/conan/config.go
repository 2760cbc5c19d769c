package conan

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/conango/conango/pkg/errors"
)

// ConfigFilename is the project manifest the CLI looks for in the working
// directory.
const ConfigFilename = "conango.toml"

// Config is the conango.toml project manifest. All fields are optional;
// explicit options given by the caller win over manifest values.
//
//	[project]
//	conanfile = "."
//	output_folder = ".conan"
//	profile = "conango"
//
//	requirements = ["fmt/10.2.1", "zlib/[>=1.2]"]
//	recipes = ["conans/cgal_custom"]
//
//	[settings]
//	"compiler.cppstd" = "17"
//
//	[env]
//	CC = ""
//	CXX = ""
type Config struct {
	Project struct {
		Conanfile    string `toml:"conanfile"`
		OutputFolder string `toml:"output_folder"`
		Profile      string `toml:"profile"`
	} `toml:"project"`
	Requirements []string          `toml:"requirements"`
	Recipes      []string          `toml:"recipes"`
	Settings     map[string]string `toml:"settings"`
	Env          map[string]string `toml:"env"`
}

// LoadConfig reads a conango.toml manifest. A missing file is not an error:
// it returns a zero Config so callers can fall back to defaults. A present
// but unparseable file is an INVALID_INPUT error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, err, "could not read %s", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidInput, err, "could not parse %s", path)
	}
	return &cfg, nil
}
