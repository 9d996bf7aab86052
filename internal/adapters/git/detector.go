// Package git reads the user's git identity with go-git, so a board can be
// tied to the same account on every machine that shares a git email.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// ErrNoIdentity is returned when neither the repository nor the global git
// config carries a user email.
var ErrNoIdentity = errors.New("no git user.email configured")

// Detector resolves git identities.
type Detector struct {
	// global loads the user-level config; replaced in tests.
	global func() (*config.Config, error)
}

// NewDetector creates a new git detector.
func NewDetector() *Detector {
	return &Detector{
		global: func() (*config.Config, error) {
			return config.LoadConfig(config.GlobalScope)
		},
	}
}

// Credential returns a credential string derived from the git user email,
// looking first at the repository containing workingDir and then at the
// global config.
func (d *Detector) Credential(workingDir string) (string, error) {
	email, err := d.Email(workingDir)
	if err != nil {
		return "", err
	}
	return "git:" + strings.ToLower(email), nil
}

// Email returns the configured git user email.
func (d *Detector) Email(workingDir string) (string, error) {
	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	if repoPath, err := findGitRepo(workingDir); err == nil {
		repo, err := git.PlainOpen(repoPath)
		if err != nil {
			return "", fmt.Errorf("failed to open git repository: %w", err)
		}
		cfg, err := repo.ConfigScoped(config.LocalScope)
		if err != nil {
			return "", fmt.Errorf("failed to read git config: %w", err)
		}
		if email := strings.TrimSpace(cfg.User.Email); email != "" {
			return email, nil
		}
	}

	if d.global != nil {
		cfg, err := d.global()
		if err == nil {
			if email := strings.TrimSpace(cfg.User.Email); email != "" {
				return email, nil
			}
		}
	}

	return "", ErrNoIdentity
}

// findGitRepo traverses up the directory tree to find a .git directory.
func findGitRepo(startPath string) (string, error) {
	currentPath := startPath

	for {
		gitPath := filepath.Join(currentPath, ".git")
		info, err := os.Stat(gitPath)
		if err == nil && info.IsDir() {
			return currentPath, nil
		}

		// A worktree has a .git file pointing at the real directory.
		if err == nil && !info.IsDir() {
			content, err := os.ReadFile(gitPath)
			if err == nil && strings.HasPrefix(string(content), "gitdir: ") {
				return currentPath, nil
			}
		}

		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			break
		}
		currentPath = parent
	}

	return "", fmt.Errorf("no .git directory found")
}
