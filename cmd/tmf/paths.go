package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	envOutDir = "TMF_OUT_DIR"

	// sourceExtension marks assembler sources when a directory is given.
	sourceExtension = ".txt"
)

// resolveOutDir picks the batch output directory: the flag, then
// TMF_OUT_DIR. Empty means next to each source.
func resolveOutDir(outFlag string) (string, error) {
	dir := strings.TrimSpace(outFlag)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(envOutDir))
	}
	if dir == "" {
		return "", nil
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// expandInputs replaces each directory argument with the sources it holds,
// sorted. Files are kept as given.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			inputs = append(inputs, filepath.Clean(arg))
			continue
		}
		found, err := discoverSources(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no %s sources found in %s", sourceExtension, arg)
		}
		inputs = append(inputs, found...)
	}
	return inputs, nil
}

func discoverSources(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sources := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), sourceExtension) {
			continue
		}
		sources = append(sources, filepath.Join(dir, name))
	}
	sort.Strings(sources)
	return sources, nil
}
