package main

import "testing"

func TestMigrateCommandTree(t *testing.T) {
	cmd := migrateCmd()
	want := map[string]bool{"up": false, "status": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("migrate %s subcommand not registered", name)
		}
	}
}

func TestServeCommandName(t *testing.T) {
	if got := serveCmd().Name(); got != "serve" {
		t.Errorf("expected serve, got %q", got)
	}
}
