package plugins

import (
	"path/filepath"
	"strings"

	"github.com/zorro/takopi-docker/pkg/provision"
	"github.com/zorro/takopi-docker/pkg/utils"
)

// Source is where a plugin is installed from.
type Source string

const (
	SourcePyPI Source = "pypi"
	SourceGit  Source = "git"
)

// InstallScript returns the shell script that installs spec with uv. Git
// URLs are shallow-cloned into workDir first. spec is validated before
// any command is built.
func InstallScript(spec, workDir string) (string, Source, error) {
	spec = strings.TrimSpace(spec)
	if err := utils.ValidatePluginSpec(spec); err != nil {
		return "", "", err
	}

	if !utils.IsGitURL(spec) {
		return uvInstall(spec), SourcePyPI, nil
	}

	dir := filepath.Join(workDir, "plugin")
	clone := provision.Command{Name: "git", Args: []string{"clone", "--depth", "1", spec, dir}}
	return clone.String() + " && " + uvInstall(dir), SourceGit, nil
}

func uvInstall(target string) string {
	return provision.Command{Name: "uv", Args: []string{"tool", "install", "-U", target}}.String()
}
