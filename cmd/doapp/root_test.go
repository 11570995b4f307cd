package doapp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_HasAllCommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{
		"install", "uninstall", "list",
		"snapshot", "rollback", "pack", "restore",
		"version", "completion",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_NoArgsShowsHelpAndFails(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(nil)

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "doapp")
}

func TestFormatBold_PlainWhenNotATerminal(t *testing.T) {
	// Test output is never a TTY, so bolding must pass through
	assert.Equal(t, "hello", formatBold("hello"))
}

func TestInstallCmd_RequiresSources(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"install"})

	assert.Error(t, root.Execute())
}
