package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/tozd/go/errors"
)

const (
	currentHeader = "// (c) Copyright 2022 - 2024 Advanced ABC, Inc. All Rights reserved.\npackage main\n"
	staleHeader   = "# (c) Copyright 2020 XYZ, Inc. All Rights reserved.\necho hi\n"
)

func setupTestRepo(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	files := map[string]string{
		"copyright.toml":      "current_year = 2024\n",
		".copyright-excludes": "gen/ @generated\n",
		"main.go":             currentHeader,
		"scripts/run.sh":      staleHeader,
		"gen/out.go":          "package gen\n",
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return tmpDir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIWithStdin(t, "", args...)
}

func runCLIWithStdin(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	app := newApp()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app.Reader = strings.NewReader(stdin)
	app.Writer = stdout
	app.ErrWriter = stderr
	err := app.RunContext(context.Background(), append([]string{"copyright-cli"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestCheck(t *testing.T) {
	repo := setupTestRepo(t)

	stdout, _, err := runCLI(t, "check", "--root", repo, filepath.Join(repo, "main.go"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "0 need update, 1 unchanged, 0 failed") {
		t.Errorf("unexpected output: %s", stdout)
	}

	stdout, _, err = runCLI(t, "check", "--root", repo, "--format", "one-line")
	if !errors.Is(err, errChangesNeeded) {
		t.Fatalf("expected errChangesNeeded, got %v", err)
	}
	if stdout != "needs update: scripts/run.sh\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
	content, _ := os.ReadFile(filepath.Join(repo, "scripts/run.sh"))
	if string(content) != staleHeader {
		t.Errorf("check must not write files, got %q", content)
	}
}

func TestUpdate(t *testing.T) {
	repo := setupTestRepo(t)

	stdout, _, err := runCLI(t, "update", "--root", repo, "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var output struct {
		Updated   []string `json:"updated"`
		Unchanged []string `json:"unchanged"`
		Success   bool     `json:"success"`
	}
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("invalid json %q: %v", stdout, err)
	}
	if !output.Success || len(output.Updated) != 1 || output.Updated[0] != "scripts/run.sh" {
		t.Errorf("unexpected output: %+v", output)
	}

	content, _ := os.ReadFile(filepath.Join(repo, "scripts/run.sh"))
	want := "# (c) Copyright 2020 - 2021 XYZ, Inc. All Rights reserved.\n" +
		"# (c) Copyright 2022 - 2024 Advanced ABC, Inc. All Rights reserved.\n" +
		"echo hi\n"
	if string(content) != want {
		t.Errorf("unexpected content:\n%s", content)
	}
}

func TestCheckPipedTargets(t *testing.T) {
	repo := setupTestRepo(t)
	mainFile := filepath.Join(repo, "main.go")
	stdin := mainFile + "\r\n\n" + mainFile + "\n" + filepath.Join(repo, "scripts", "..", "main.go") + "\n"

	stdout, _, err := runCLIWithStdin(t, stdin, "check", "--root", repo, "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var output struct {
		Updated   []string `json:"updated"`
		Unchanged []string `json:"unchanged"`
	}
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		t.Fatalf("invalid json %q: %v", stdout, err)
	}
	if len(output.Updated) != 0 || len(output.Unchanged) != 1 || output.Unchanged[0] != "main.go" {
		t.Errorf("expected main.go once, got %+v", output)
	}
}

func TestUpdateDryRunAndYearOverride(t *testing.T) {
	repo := setupTestRepo(t)

	_, stderr, err := runCLI(t, "update", "--root", repo, "--dry-run", "--year", "2025", filepath.Join(repo, "main.go"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, "+// (c) Copyright 2022 - 2025 Advanced ABC") {
		t.Errorf("expected diff in logs, got: %s", stderr)
	}
	content, _ := os.ReadFile(filepath.Join(repo, "main.go"))
	if string(content) != currentHeader {
		t.Errorf("dry run must not write files, got %q", content)
	}
}

func TestConfigOverrideFlags(t *testing.T) {
	repo := setupTestRepo(t)
	if err := os.WriteFile(filepath.Join(repo, "custom-excludes"), []byte("scripts/ @skip\ngen/ @generated\n"), 0644); err != nil {
		t.Fatalf("Failed to write excludes: %v", err)
	}

	stdout, _, err := runCLI(t, "check", "--root", repo, "--excludes_path", "custom-excludes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "0 need update, 1 unchanged, 0 failed") {
		t.Errorf("expected scripts/ to be excluded, got: %s", stdout)
	}

	_, _, err = runCLI(t, "update", "--root", repo, "--padding", "2", "--whitespace-surround", filepath.Join(repo, "scripts/run.sh"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, _ := os.ReadFile(filepath.Join(repo, "scripts/run.sh"))
	want := "#  (c) Copyright 2020 - 2021 XYZ, Inc. All Rights reserved.\n" +
		"#  (c) Copyright 2022 - 2024 Advanced ABC, Inc. All Rights reserved.\n" +
		"\n" +
		"echo hi\n"
	if string(content) != want {
		t.Errorf("unexpected content:\n%s", content)
	}

	if _, _, err := runCLI(t, "check", "--root", repo, "--padding", "-1"); err == nil {
		t.Error("expected negative padding to be rejected")
	}
}

func TestLanguage(t *testing.T) {
	repo := setupTestRepo(t)
	targets := []string{filepath.Join(repo, "main.go"), filepath.Join(repo, "gen/out.go"), filepath.Join(repo, "notes.unknown")}

	stdout, _, err := runCLI(t, append([]string{"language", "--root", repo}, targets...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", stdout)
	}
	if lines[0] != targets[0]+": Go" {
		t.Errorf("unexpected line: %s", lines[0])
	}
	if lines[1] != targets[1]+": Go (excluded)" {
		t.Errorf("unexpected line: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], targets[2]+": unknown (") {
		t.Errorf("unexpected line: %s", lines[2])
	}

	stdout, _, err = runCLI(t, "language", "--root", repo, "--format", "json", targets[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]languageJSON
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("invalid json %q: %v", stdout, err)
	}
	if decoded[targets[0]].Language != "Go" || decoded[targets[0]].Excluded {
		t.Errorf("unexpected entry: %+v", decoded[targets[0]])
	}

	if _, _, err := runCLI(t, "language", "--root", repo); err == nil {
		t.Error("expected error without targets")
	}
}

func TestVerify(t *testing.T) {
	repo := setupTestRepo(t)

	stdout, _, err := runCLI(t, "verify", "--root", repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "Configuration is valid\n" {
		t.Errorf("unexpected output: %q", stdout)
	}

	if err := os.WriteFile(filepath.Join(repo, ".copyright-excludes"), []byte("lonely\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, _, err = runCLI(t, "verify", "--root", repo)
	if err == nil || !strings.Contains(err.Error(), "Invalid line 1 in excludes file: lonely") {
		t.Errorf("expected excludes warning, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(repo, "copyright.toml"), []byte("padding = -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "verify", "--root", repo); err == nil {
		t.Error("expected invalid configuration error")
	}
}

func TestVerboseAndQuietConflict(t *testing.T) {
	repo := setupTestRepo(t)
	if _, _, err := runCLI(t, "--verbose", "--quiet", "verify", "--root", repo); err == nil {
		t.Error("expected error for conflicting flags")
	}
}

func TestRootMustBeDirectory(t *testing.T) {
	repo := setupTestRepo(t)
	if _, _, err := runCLI(t, "check", "--root", filepath.Join(repo, "main.go")); err == nil {
		t.Error("expected error for non-directory root")
	}
}
