package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatCmd_Use(t *testing.T) {
	assert.Equal(t, "chat", chatCmd.Use)
}

func TestChatCmd_Long(t *testing.T) {
	assert.Contains(t, chatCmd.Long, "/status")
	assert.Contains(t, chatCmd.Long, "/sair")
}

func TestRootCmd_RegistersAllCommands(t *testing.T) {
	want := map[string]bool{
		"index":   false,
		"chat":    false,
		"ask":     false,
		"status":  false,
		"history": false,
		"version": false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}

	for name, found := range want {
		assert.True(t, found, "command %q not registered", name)
	}
}

func TestChatCmd_HelpExecutes(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"chat", "--help"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "interactive")
}
