package packages

import (
	"fmt"
	"strings"

	"github.com/zorro/takopi-docker/pkg/provision"
	"github.com/zorro/takopi-docker/pkg/utils"
)

// searchLimit caps apt-cache search output.
const searchLimit = 20

// InstallScript returns the apt script installing the comma-separated list
// of packages, and the parsed package names.
func InstallScript(list string) (string, []string, error) {
	pkgs, err := utils.ValidatePackageList(list)
	if err != nil {
		return "", nil, err
	}
	update := provision.Command{Name: "sudo", Args: []string{"apt-get", "update"}}
	install := provision.Command{Name: "sudo", Args: append([]string{"apt-get", "install", "-y"}, pkgs...)}
	return update.String() + " && " + install.String(), pkgs, nil
}

// SearchScript returns the script listing apt packages matching term.
func SearchScript(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", fmt.Errorf("search term cannot be empty")
	}
	if strings.HasPrefix(term, "-") || strings.ContainsAny(term, "\n\x00") {
		return "", fmt.Errorf("invalid search term %q", term)
	}
	search := provision.Command{Name: "apt-cache", Args: []string{"search", "--", term}}
	return fmt.Sprintf("%s | head -%d", search.String(), searchLimit), nil
}
