package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxListItems bounds comma-separated inputs in the configurator.
const MaxListItems = 50

// aptPackagePattern follows Debian policy for package names, with an optional
// =version or :arch suffix.
var aptPackagePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+.\-]+(:[a-z0-9]+)?(=[A-Za-z0-9.+~:\-]+)?$`)

// pypiNamePattern matches PEP 508 distribution names with optional extras and
// a version specifier.
var pypiNamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._\-]*[A-Za-z0-9])?(\[[A-Za-z0-9,._\-]+\])?([<>=!~]=?[A-Za-z0-9.*+!\-]+)?$`)

// versionPattern matches build argument versions such as 21, 3.9.9 or 8.12.
var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*([.+\-][A-Za-z0-9]+)*$`)

// SplitList splits a comma or whitespace separated list, dropping empty items.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ValidatePackageName validates an apt package name.
func ValidatePackageName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("package name cannot start with '-'")
	}
	if !aptPackagePattern.MatchString(name) {
		return fmt.Errorf("invalid package name %q", name)
	}
	return nil
}

// ValidatePackageList validates a comma-separated list of apt packages and
// returns the parsed names.
func ValidatePackageList(s string) ([]string, error) {
	pkgs := SplitList(s)
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages given")
	}
	if len(pkgs) > MaxListItems {
		return nil, fmt.Errorf("too many packages (max %d)", MaxListItems)
	}
	for _, p := range pkgs {
		if err := ValidatePackageName(p); err != nil {
			return nil, err
		}
	}
	return pkgs, nil
}

// IsGitURL reports whether spec is a git URL rather than a PyPI name.
func IsGitURL(spec string) bool {
	for _, prefix := range []string{"http://", "https://", "git://"} {
		if strings.HasPrefix(spec, prefix) {
			return true
		}
	}
	return false
}

// ValidatePluginSpec validates a plugin given as a PyPI name or a git URL.
func ValidatePluginSpec(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return fmt.Errorf("plugin cannot be empty")
	}
	if IsGitURL(spec) {
		if strings.ContainsAny(spec, " \t\n;&|`$") {
			return fmt.Errorf("invalid git URL %q", spec)
		}
		return nil
	}
	if strings.HasPrefix(spec, "-") || !pypiNamePattern.MatchString(spec) {
		return fmt.Errorf("invalid package name %q", spec)
	}
	return nil
}

// ValidateVersion validates a toolchain version build argument.
func ValidateVersion(v string) error {
	if !versionPattern.MatchString(strings.TrimSpace(v)) {
		return fmt.Errorf("invalid version %q", v)
	}
	return nil
}
