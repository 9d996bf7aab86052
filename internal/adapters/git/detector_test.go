package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

func noGlobal() (*config.Config, error) {
	return config.NewConfig(), nil
}

func initRepo(t *testing.T, email string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to init git repo: %v", err)
	}

	if email != "" {
		cfg, err := repo.Config()
		if err != nil {
			t.Fatalf("Failed to read config: %v", err)
		}
		cfg.User.Email = email
		if err := repo.SetConfig(cfg); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
	}
	return dir
}

func TestDetector_Credential(t *testing.T) {
	dir := initRepo(t, "Dev@Example.com")
	d := &Detector{global: noGlobal}

	cred, err := d.Credential(dir)
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}
	if cred != "git:dev@example.com" {
		t.Errorf("Credential() = %q, want git:dev@example.com", cred)
	}
}

func TestDetector_NestedDirectory(t *testing.T) {
	dir := initRepo(t, "nested@example.com")
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	d := &Detector{global: noGlobal}
	email, err := d.Email(sub)
	if err != nil {
		t.Fatalf("Email() error = %v", err)
	}
	if email != "nested@example.com" {
		t.Errorf("Email() = %q", email)
	}
}

func TestDetector_FallsBackToGlobal(t *testing.T) {
	dir := initRepo(t, "")
	d := &Detector{global: func() (*config.Config, error) {
		cfg := config.NewConfig()
		cfg.User.Email = "global@example.com"
		return cfg, nil
	}}

	email, err := d.Email(dir)
	if err != nil {
		t.Fatalf("Email() error = %v", err)
	}
	if email != "global@example.com" {
		t.Errorf("Email() = %q, want global email", email)
	}
}

func TestDetector_NoIdentity(t *testing.T) {
	d := &Detector{global: noGlobal}

	_, err := d.Credential(t.TempDir())
	if !errors.Is(err, ErrNoIdentity) {
		t.Errorf("Credential() error = %v, want ErrNoIdentity", err)
	}
}

func TestFindGitRepo(t *testing.T) {
	dir := initRepo(t, "")

	found, err := findGitRepo(dir)
	if err != nil {
		t.Fatalf("findGitRepo() error = %v", err)
	}
	if found != dir {
		t.Errorf("findGitRepo() = %q, want %q", found, dir)
	}

	worktree := t.TempDir()
	if err := os.WriteFile(filepath.Join(worktree, ".git"), []byte("gitdir: /elsewhere\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if found, err := findGitRepo(worktree); err != nil || found != worktree {
		t.Errorf("findGitRepo(worktree) = %q, %v", found, err)
	}
}
