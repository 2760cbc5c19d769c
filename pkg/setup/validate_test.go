package setup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conango/conango/pkg/errors"
)

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(".", nil, nil); err != nil {
		t.Fatalf("Validate = %v, want nil", err)
	}
}

func TestValidateAggregatesBadRequirements(t *testing.T) {
	err := Validate(".", nil, []string{"invalid1", "fmt/10.0.0", "invalid2"})
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Fatalf("Validate = %v, want INVALID_INPUT", err)
	}

	msg := err.Error()
	for _, want := range []string{"invalid1", "invalid2"} {
		if !strings.Contains(msg, `"`+want+`"`) {
			t.Errorf("error does not mention offending requirement %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "fmt/10.0.0") {
		t.Errorf("error flags the valid requirement fmt/10.0.0:\n%s", msg)
	}
}

func TestValidateEmptyRequirementString(t *testing.T) {
	err := Validate(".", nil, []string{""})
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Fatalf("Validate = %v, want INVALID_INPUT", err)
	}
}

func TestValidateMissingConanfilePath(t *testing.T) {
	err := Validate("/nonexistent/project", nil, nil)
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Fatalf("Validate = %v, want INVALID_INPUT", err)
	}
	if !strings.Contains(err.Error(), "/nonexistent/project") {
		t.Errorf("error does not name the path: %v", err)
	}
}

func TestValidateRecipePaths(t *testing.T) {
	missing := "/nonexistent/recipe"
	noConanfile := t.TempDir()
	good := t.TempDir()
	if err := os.WriteFile(filepath.Join(good, "conanfile.py"), []byte("# ok\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Validate(".", []string{missing, noConanfile, good}, nil)
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Fatalf("Validate = %v, want INVALID_INPUT", err)
	}

	msg := err.Error()
	if !strings.Contains(msg, missing) {
		t.Errorf("error missing the absent recipe path:\n%s", msg)
	}
	if !strings.Contains(msg, noConanfile) || !strings.Contains(msg, "conanfile.py") {
		t.Errorf("error missing the conanfile-less recipe path:\n%s", msg)
	}
	if strings.Contains(msg, good) {
		t.Errorf("error flags the valid recipe path:\n%s", msg)
	}
}

func TestValidateConanfileAndRequirementsMutuallyExclusive(t *testing.T) {
	dir := t.TempDir()

	err := Validate(dir, nil, []string{"fmt/10.0.0"})
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Fatalf("Validate = %v, want INVALID_INPUT", err)
	}
	if !strings.Contains(err.Error(), "both") {
		t.Errorf("error does not explain the exclusivity: %v", err)
	}

	// The default conanfile path with explicit requirements is fine.
	if err := Validate(".", nil, []string{"fmt/10.0.0"}); err != nil {
		t.Errorf("Validate with default conanfile = %v, want nil", err)
	}
}

func TestValidateCollectsAllProblemsAtOnce(t *testing.T) {
	err := Validate("/nonexistent/project", []string{"/nonexistent/recipe"}, []string{"badreq"})
	if err == nil {
		t.Fatal("Validate = nil, want aggregated error")
	}
	msg := err.Error()
	for _, want := range []string{"badreq", "/nonexistent/project", "/nonexistent/recipe"} {
		if !strings.Contains(msg, want) {
			t.Errorf("aggregated error missing %q:\n%s", want, msg)
		}
	}
}
