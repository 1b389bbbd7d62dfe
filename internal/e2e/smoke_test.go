package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokeCatalog = `version = 1

[[slots]]
id = 1

[[slots.passes]]
name = "p1"

[[slots.passes]]
name = "p2"
requires = ["p1"]

[[slots]]
id = 2
default = ["fre"]

[[slots.passes]]
name = "fre"

[[slots]]
id = 3
default = ["expand"]

[[slots.passes]]
name = "expand"
`

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	require.NoError(t, writeCatalogFixture(home))
	uri := "benchmark://gcc_pr-v0/qsort?src_dir=" + filepath.Join(home, "src") + "&build=make&list=1"

	_, stderr, err := runGCCPR(t, binaryPath, home, "",
		"episode",
		"--benchmark", uri,
		"--action", "p1",
		"--action", "p2",
		"--record",
	)
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runGCCPR(t, binaryPath, home, "", "history")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "episodes: 1")
	assert.Contains(t, stdout, "list1*: p1 p2")
}

func TestSmokeServe(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	require.NoError(t, writeCatalogFixture(home))

	stdout, stderr, err := runGCCPR(t, binaryPath, home, `{"op":"spaces"}`+"\n", "serve")
	require.NoError(t, err, "stderr: %s", stderr)

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout)), &resp))
	assert.Equal(t, true, resp["ok"])
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "gccpr-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gccpr")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build gccpr binary: %s", string(output))
	return binaryPath
}

func runGCCPR(t *testing.T, binaryPath, home, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home, "GCCPR_WORK_ROOT="+filepath.Join(home, "work"))
	cmd.Dir = home
	cmd.Stdin = strings.NewReader(stdin)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func writeCatalogFixture(home string) error {
	configDir := filepath.Join(home, ".gccpr")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "passes.toml"), []byte(smokeCatalog), 0o644)
}
