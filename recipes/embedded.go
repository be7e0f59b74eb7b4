// Package recipes provides the embedded default provisioning manifests.
package recipes

import _ "embed"

// Java is the manifest for the Java development image: Eclipse Temurin, Maven,
// Gradle, Node.js and the coding-agent CLIs selected by the AGENT build argument.
// Placeholders like ${JAVA_VERSION} are substituted from build arguments at load time.
//
//go:embed java.yaml
var Java []byte
