// repo_gitignore.go manages the .smartbar/.gitignore file.
//
// The index, its WAL sidecars and local config are always ignored since
// they are derived or machine-specific. The content database is shared by
// default; Ignore marks it local. Existing entries and formatting are kept.

package repo

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const localHeader = "# Local databases (not committed)"

const defaultGitignore = `# smartbar - the index is rebuilt from content with 'smartbar reindex'
search.db
*.db-wal
*.db-shm
config.yaml
`

// writeGitignore creates the .gitignore on first init. Later inits leave it
// alone so local markers survive.
func writeGitignore(dir string) error {
	p := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(p, []byte(defaultGitignore), 0644)
}

// parseGitignore reads a gitignore file and returns its lines (trimmed).
func parseGitignore(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines, nil
}

// Ignore adds file to the workspace .gitignore under the local header.
func Ignore(dir, file string) error {
	p := filepath.Join(dir, ".gitignore")
	lines, err := parseGitignore(p)
	if err != nil {
		return err
	}
	if slices.Contains(lines, file) {
		return nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	s := string(data)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if !slices.Contains(lines, localHeader) {
		s += "\n" + localHeader + "\n"
	}
	s += file + "\n"
	return os.WriteFile(p, []byte(s), 0644)
}

// IsIgnored reports whether file is listed in the workspace .gitignore.
func IsIgnored(dir, file string) (bool, error) {
	lines, err := parseGitignore(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return false, err
	}
	return slices.Contains(lines, file), nil
}

// Unignore removes file from the workspace .gitignore. The local header is
// dropped once nothing is listed under it.
func Unignore(dir, file string) error {
	p := filepath.Join(dir, ".gitignore")
	lines, err := parseGitignore(p)
	if err != nil {
		return err
	}
	if !slices.Contains(lines, file) {
		return nil
	}

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != file {
			kept = append(kept, line)
		}
	}
	if i := slices.Index(kept, localHeader); i >= 0 {
		rest := kept[i+1:]
		if !slices.ContainsFunc(rest, func(s string) bool { return s != "" }) {
			kept = kept[:i]
		}
	}
	s := strings.TrimRight(strings.Join(kept, "\n"), "\n") + "\n"
	return os.WriteFile(p, []byte(s), 0644)
}
