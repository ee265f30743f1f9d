package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/blockclip/internal/logger"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

type env struct {
	configDir string
	dataDir   string
}

// newEnv prepares directories and a config.yaml that uses the file
// clipboard so tests never touch the system clipboard.
func newEnv(t *testing.T) env {
	t.Helper()
	e := env{configDir: t.TempDir(), dataDir: t.TempDir()}
	cfg := "backend: sqlite\nclipboard: file\nplacement: relative\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte(cfg), 0o644))
	t.Cleanup(func() { logger.SetVerbose(false) })
	return e
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "blockclip %s: %s", strings.Join(args, " "), out)
	return out
}

func (e env) addFile(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return strings.TrimSpace(e.mustRun(t, "add", path))
}

func TestInitCreatesConfigAndDocument(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "cfg")
	dataDir := t.TempDir()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config-dir", configDir, "--data-dir", dataDir, "init"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "initialized successfully")
	_, err := os.Stat(filepath.Join(configDir, configFileExt))
	assert.NoError(t, err, "default config.yaml is written on first run")
	_, err = os.Stat(filepath.Join(dataDir, "blockclip.db"))
	assert.NoError(t, err)
}

func TestVersion(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "blockclip v")
}

func TestCopyPasteRenamesSymbol(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "symbols", "add", "Score", "string")
	id := e.addFile(t, `{"kind":"set","fields":{"VAR":{"name":"Score","type":"number"}},
		"next":{"kind":"print"},"position":{"x":10,"y":10}}`)

	e.mustRun(t, "copy", id)
	out := e.mustRun(t, "paste", "--x", "100", "--y", "50")
	assert.Contains(t, out, "renamed Score -> Score_Copy (number)")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	pastedID := lines[0]
	show := e.mustRun(t, "show", "--json", pastedID)
	var v nodeView
	require.NoError(t, json.Unmarshal([]byte(show), &v))
	assert.Equal(t, "set", v.Kind)
	assert.Nil(t, v.Next)
	assert.Equal(t, &types.Position{X: 100, Y: 50}, v.Position)
	assert.Equal(t, map[string]any{"name": "Score_Copy", "type": "number"}, v.Fields["VAR"])

	syms := e.mustRun(t, "symbols")
	assert.Contains(t, syms, "Score_Copy")

	// A second paste reuses the renamed symbol.
	out = e.mustRun(t, "paste", "--x", "0", "--y", "0")
	assert.NotContains(t, out, "created symbol")
}

func TestPasteReplacesStaleOption(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "options", "set", "sound", "NAME", "beep", "chime")
	id := e.addFile(t, `{"kind":"sound","fields":{"NAME":"gong"}}`)

	e.mustRun(t, "copy", id)
	out := e.mustRun(t, "paste", "--json", "--mode", "absolute", "--x", "40", "--y", "20", "--scale", "2")

	var res struct {
		RootIDs  []string
		Replaced []struct {
			Field string
			From  any
			To    any
		}
		Target types.Position
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Replaced, 1)
	assert.Equal(t, "gong", res.Replaced[0].From)
	assert.Equal(t, "beep", res.Replaced[0].To)
	assert.Equal(t, types.Position{X: 20, Y: 10}, res.Target)

	opts := e.mustRun(t, "options", "get", "sound", "NAME")
	assert.Equal(t, "beep\nchime\n", opts)
	e.mustRun(t, "options", "clear", "sound", "NAME")
	assert.Equal(t, "free-form\n", e.mustRun(t, "options", "get", "sound", "NAME"))
}

func TestCopySelectionAndBlocks(t *testing.T) {
	e := newEnv(t)
	ids := strings.Fields(e.addFile(t, `{"format":"blockclip/v1","blocks":[
		{"kind":"a","position":{"x":10,"y":10}},
		{"kind":"b","position":{"x":40,"y":10}}]}`))
	require.Len(t, ids, 2)

	e.mustRun(t, "copy", ids[0], ids[1])
	e.mustRun(t, "paste", "--x", "100", "--y", "100")

	out := e.mustRun(t, "blocks", "--json")
	var roots []nodeView
	require.NoError(t, json.Unmarshal([]byte(out), &roots))
	require.Len(t, roots, 4)
	assert.Equal(t, &types.Position{X: 100, Y: 100}, roots[2].Position)
	assert.Equal(t, &types.Position{X: 130, Y: 100}, roots[3].Position)
}

func TestExportImport(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "symbols", "add", "Lives", "number")
	e.addFile(t, `{"kind":"get","fields":{"VAR":"Lives"},"position":{"x":1,"y":2}}`)
	dir := t.TempDir()
	e.mustRun(t, "export", dir)

	other := newEnv(t)
	out := other.mustRun(t, "import", dir)
	assert.Equal(t, "imported 1 block(s)\n", out)
	assert.Contains(t, other.mustRun(t, "symbols"), "Lives")
}

func TestExitCodes(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "paste")
	assert.ErrorIs(t, err, types.ErrEmptyClipboard)
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = e.run(t, "show", "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = e.run(t, "paste", "--mode", "sideways")
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = e.run(t, "symbols", "add", "")
	assert.ErrorIs(t, err, types.ErrInvalidName)

	assert.Equal(t, exitSysError, exitCode(sysErr(errors.New("disk"))))
	assert.Equal(t, exitSysError, exitCode(&types.TransferError{Op: "read", Err: errors.New("denied")}))
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(fmt.Errorf("unknown flag")))
}

func TestMemoryBackendIsRejected(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte("backend: memory\n"), 0o644))
	_, err := e.run(t, "blocks")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}
