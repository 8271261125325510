package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func demoConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  type: memory\n  demo: true\nlogging:\n  level: warn\n"), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Log(errOut.String())
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "logistics-admin", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "mcp", "tables", "describe", "rows", "status", "summary", "hash-password"} {
		assert.Contains(t, names, want)
	}
}

func TestTablesCommand(t *testing.T) {
	out, err := run(t, "", "tables", "--config", demoConfig(t))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, "support_tickets")
	assert.Len(t, lines, 6)
}

func TestDescribeCommand(t *testing.T) {
	out, err := run(t, "", "describe", "stores", "--config", demoConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "manager")

	_, err = run(t, "", "describe", "ghosts", "--config", demoConfig(t))
	assert.Error(t, err)
}

func TestRowsCommand(t *testing.T) {
	cfg := demoConfig(t)

	out, err := run(t, "", "rows", "vendors", "--config", cfg, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Book Haven")

	out, err = run(t, "", "rows", "stores", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "(3 rows)")

	_, err = run(t, "", "rows", "vendors", "--config", cfg, "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, "", "rows", "ghosts", "--config", cfg)
	assert.Error(t, err)
}

func TestStatusCommand(t *testing.T) {
	cfg := demoConfig(t)

	out, err := run(t, "", "status", "deliveries", "3", "completed", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Status updated to completed\n", out)

	_, err = run(t, "", "status", "deliveries", "3", "lost", "--config", cfg)
	assert.ErrorContains(t, err, "invalid status")

	_, err = run(t, "", "status", "parcels", "3", "completed", "--config", cfg)
	assert.Error(t, err)
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, "", "summary", "--config", demoConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Delivery Management")
	assert.Contains(t, out, "in_transit=1")
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := run(t, "", "hash-password", "s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("s3cret")))

	out, err = run(t, "from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))

	_, err = run(t, "", "hash-password")
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "", "tables", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
