package main

import (
	"testing"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "migrate"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
}

func TestMigrateCommand_RejectsUnknownAction(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "sideways"})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for unknown migrate action")
	}
}

func TestServeCommand_RejectsArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"serve", "extra"})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for positional args")
	}
}
