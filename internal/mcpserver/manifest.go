package mcpserver

import (
	"encoding/json"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	repositoryURL  = "https://github.com/panbanda/sweepstacx"
)

// Manifest is the server.json entry for the registry. sweepstacx ships as a
// local binary started with `sweepstacx mcp`, so no package or remote is
// listed.
type Manifest struct {
	Schema      string     `json:"$schema"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Version     string     `json:"version"`
	Repository  Repository `json:"repository"`
}

// Repository points at the source of the server.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// GenerateManifest renders the manifest for version.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}
	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/sweepstacx",
		Description: "Unused import detection and removal for JavaScript, TypeScript and Python",
		Version:     version,
		Repository:  Repository{URL: repositoryURL, Source: "github"},
	}, "", "  ")
}
