// Package envfile provides utilities for reading and writing shell-style
// environment files.
package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse parses a shell-style env file and returns key-value pairs.
// It handles:
// - KEY=VALUE format
// - KEY="VALUE" and KEY='VALUE' (quotes are stripped)
// - an optional leading "export "
// - Comments (lines starting with #)
// - Empty lines (skipped)
// - Values containing = signs (only first = is used as delimiter)
func Parse(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	envVars, err := ParseReader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return envVars, nil
}

// ParseReader parses env file content from r.
func ParseReader(r io.Reader) (map[string]string, error) {
	envVars := make(map[string]string)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		// Parse KEY=VALUE or KEY="VALUE"
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		envVars[key] = value
	}

	return envVars, scanner.Err()
}

// ParsePair splits a single KEY=VALUE argument, as passed to --build-arg.
func ParsePair(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid KEY=VALUE pair: %q", s)
	}
	return key, value, nil
}
