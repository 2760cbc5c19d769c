package conan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateDependencyReport renders a plain-text summary of the resolved
// configuration and writes it to dependency-report.txt inside the
// per-build-type output folder.
//
// The report is for auditability and must never break the build: the render
// always succeeds, and lookup or write failures degrade to debug-logged
// notes. The rendered report is returned either way.
func (h *Helper) GenerateDependencyReport(ctx context.Context, requirements []string) string {
	var b strings.Builder
	rule := strings.Repeat("-", 60)

	fmt.Fprintln(&b, "conango dependency report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Run ID:        %s\n", uuid.NewString())
	fmt.Fprintf(&b, "Generated:     %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Profile:       %s\n", h.profile)
	fmt.Fprintf(&b, "Build type:    %s\n", h.buildType)
	fmt.Fprintf(&b, "Output folder: %s\n", h.OutputDir())

	if len(h.settings) > 0 {
		fmt.Fprintln(&b, "\nSettings:")
		for _, key := range sortedKeys(h.settings) {
			fmt.Fprintf(&b, "  %s=%s\n", key, h.settings[key])
		}
	}

	fmt.Fprintln(&b, "\nRequirements:")
	if len(requirements) > 0 {
		for _, req := range requirements {
			fmt.Fprintf(&b, "  %s\n", req)
		}
	} else {
		fmt.Fprintln(&b, "  (loaded from conanfile)")
	}

	if len(h.localRecipes) > 0 {
		fmt.Fprintln(&b, "\nLocal Recipes:")
		for _, recipe := range h.localRecipes {
			fmt.Fprintf(&b, "  %s\n", recipe)
		}
	}

	if cached := h.cachedPackages(ctx); len(cached) > 0 {
		fmt.Fprintln(&b, "\nResolved packages (local cache):")
		for _, ref := range cached {
			fmt.Fprintf(&b, "  %s\n", ref)
		}
	}

	report := b.String()

	path := filepath.Join(h.OutputDir(), ReportFilename)
	if err := os.MkdirAll(h.OutputDir(), 0o755); err != nil {
		h.logger.Debugf(err, "could not create output folder for dependency report")
		return report
	}
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		h.logger.Debugf(err, "could not write dependency report to %s", path)
		return report
	}
	h.logger.Verbosef("dependency report written to %s", path)
	return report
}

// cachedPackages returns a best-effort sorted listing of package references
// in the local Conan cache. Failures are debug-logged and yield nil.
func (h *Helper) cachedPackages(ctx context.Context) []string {
	var cached cacheList
	if err := h.runJSON(ctx, &cached, "list", "-c", "-f", "json", "*"); err != nil {
		h.logger.Debugf(err, "could not list cached packages for the report")
		return nil
	}
	refs := make([]string, 0, len(cached.LocalCache))
	for ref := range cached.LocalCache {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
