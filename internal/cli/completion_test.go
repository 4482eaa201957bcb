package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if args == nil {
		args = []string{}
	}
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCompletionBash(t *testing.T) {
	output, err := runRoot(t, "completion", "bash")
	require.NoError(t, err)

	assert.Contains(t, output, "__start_pingnodes()")
	assert.Contains(t, output, "complete -o default -F __start_pingnodes pingnodes")
	assert.Equal(t, strings.Count(output, "{"), strings.Count(output, "}"), "braces should be balanced")
}

func TestCompletionZsh(t *testing.T) {
	output, err := runRoot(t, "completion", "zsh")
	require.NoError(t, err)

	assert.Contains(t, output, "#compdef pingnodes")
	assert.Contains(t, output, "_pingnodes()")
}

func TestCompletionFish(t *testing.T) {
	output, err := runRoot(t, "completion", "fish")
	require.NoError(t, err)

	assert.Contains(t, output, "fish completion for pingnodes")
	assert.Contains(t, output, "complete -c pingnodes")
}

func TestCompletionPowershell(t *testing.T) {
	output, err := runRoot(t, "completion", "powershell")
	require.NoError(t, err)

	assert.Contains(t, strings.ToLower(output), "powershell completion")
	assert.Contains(t, output, "Register-ArgumentCompleter")
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	_, err := runRoot(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestCompletionCommandValidArgs(t *testing.T) {
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
}
