/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ops

import (
	"testing"

	"github.com/spf13/cobra"
)

func testCommand(use string) *cobra.Command {
	return &cobra.Command{Use: use, Short: use + " command"}
}

func TestRegistry_BasicRegistration(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("scan", GroupContent, CapReadOnly, testCommand("scan"), "Scan for broken links"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	cmd, exists := registry.GetCommand("scan")
	if !exists {
		t.Fatal("Expected command to exist after registration")
	}
	if cmd.Name != "scan" {
		t.Errorf("Expected command name 'scan', got '%s'", cmd.Name)
	}
	if cmd.Group != GroupContent {
		t.Errorf("Expected command group 'content', got '%s'", cmd.Group)
	}
	if cmd.Capability != CapReadOnly {
		t.Errorf("Expected read-only capability, got '%s'", cmd.Capability)
	}
	if cmd.Destructive() {
		t.Error("read-only command must not classify as destructive")
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("clean", GroupContent, CapWrite, testCommand("clean"), "Clean broken links"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if err := registry.Register("clean", GroupContent, CapWrite, testCommand("clean"), "Clean again"); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
}

func TestRegistry_DestructiveTaxonomy(t *testing.T) {
	registry := NewRegistry()

	// Group and capability must agree
	if err := registry.Register("delete-drafts", GroupDestructive, CapWrite, testCommand("delete-drafts"), ""); err == nil {
		t.Error("destructive group with write capability must be rejected")
	}
	if err := registry.Register("publish", GroupContent, CapDestructive, testCommand("publish"), ""); err == nil {
		t.Error("destructive capability outside the destructive group must be rejected")
	}

	if err := registry.Register("delete-drafts", GroupDestructive, CapDestructive, testCommand("delete-drafts"), "Delete draft entries"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	if !registry.IsDestructive("delete-drafts") {
		t.Error("delete-drafts should classify as destructive")
	}
}

func TestRegistry_UnknownCommandFailsClosed(t *testing.T) {
	registry := NewRegistry()
	if !registry.IsDestructive("no-such-command") {
		t.Error("unknown commands must be treated as destructive")
	}
}

func TestRegistry_GroupIndex(t *testing.T) {
	registry := NewRegistry()

	registrations := []struct {
		name       string
		group      CommandGroup
		capability Capability
	}{
		{"scan", GroupContent, CapReadOnly},
		{"clean", GroupContent, CapWrite},
		{"publish", GroupContent, CapWrite},
		{"delete-drafts", GroupDestructive, CapDestructive},
		{"version", GroupSupport, CapReadOnly},
		{"envinfo", GroupSupport, CapReadOnly},
	}
	for _, reg := range registrations {
		if err := registry.Register(reg.name, reg.group, reg.capability, testCommand(reg.name), reg.name); err != nil {
			t.Fatalf("register %s: %v", reg.name, err)
		}
	}

	if got := len(registry.GetCommandsByGroup(GroupContent)); got != 3 {
		t.Errorf("Expected 3 content commands, got %d", got)
	}
	if got := len(registry.GetCommandsByGroup(GroupDestructive)); got != 1 {
		t.Errorf("Expected 1 destructive command, got %d", got)
	}

	groups := registry.ListGroups()
	if groups[GroupSupport] != 2 {
		t.Errorf("Expected 2 support commands, got %d", groups[GroupSupport])
	}
	if len(registry.GetAllCommands()) != len(registrations) {
		t.Errorf("Expected %d commands total, got %d", len(registrations), len(registry.GetAllCommands()))
	}
}
