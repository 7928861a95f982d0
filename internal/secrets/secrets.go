// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: crossref-mailto, datacite-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Key names the lookup clients consume. Anything else in the directory is
// loaded but flagged by Unknown, which usually means a typo in the filename.
const (
	KeyCrossRefMailto = "crossref-mailto"
	KeyDataCiteToken  = "datacite-token"
)

var knownKeys = map[string]bool{
	KeyCrossRefMailto: true,
	KeyDataCiteToken:  true,
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Unknown returns the loaded key names no client consumes, sorted.
func Unknown(secrets map[string]string) []string {
	var names []string
	for name := range secrets {
		if !knownKeys[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
