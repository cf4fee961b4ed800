/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ops

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
)

// CommandGroup represents the operational classification of commands
type CommandGroup string

const (
	GroupContent     CommandGroup = "content"     // scan, clean, publish pipelines
	GroupDestructive CommandGroup = "destructive" // bulk delete operations
	GroupSupport     CommandGroup = "support"     // version, envinfo, init
)

// Capability marks what a command is allowed to do against the remote space.
type Capability string

const (
	CapReadOnly    Capability = "read-only"   // listing and existence checks only
	CapWrite       Capability = "write"       // updates and publishes
	CapDestructive Capability = "destructive" // deletes; requires --force
)

// CommandRegistration represents a registered command with its classification
type CommandRegistration struct {
	Name        string
	Group       CommandGroup
	Capability  Capability
	Command     *cobra.Command
	Description string
}

// Destructive reports whether the command deletes remote content and must be
// gated behind --force.
func (c *CommandRegistration) Destructive() bool {
	return c.Capability == CapDestructive
}

// Registry manages command classifications and registrations
type Registry struct {
	mu         sync.RWMutex
	commands   map[string]*CommandRegistration
	groupIndex map[CommandGroup][]*CommandRegistration
}

// NewRegistry returns an empty registry, for tests that need isolation.
func NewRegistry() *Registry {
	return &Registry{
		commands:   make(map[string]*CommandRegistration),
		groupIndex: make(map[CommandGroup][]*CommandRegistration),
	}
}

// Global registry instance
var globalRegistry = NewRegistry()

// GetRegistry returns the global command registry
func GetRegistry() *Registry {
	return globalRegistry
}

// RegisterCommand registers a command with its operational classification
func RegisterCommand(name string, group CommandGroup, capability Capability, cmd *cobra.Command, description string) error {
	return GetRegistry().Register(name, group, capability, cmd, description)
}

// Register adds a command to the registry
func (r *Registry) Register(name string, group CommandGroup, capability Capability, cmd *cobra.Command, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	if group == GroupDestructive && capability != CapDestructive {
		return fmt.Errorf("command %s: destructive group requires the destructive capability", name)
	}
	if group != GroupDestructive && capability == CapDestructive {
		return fmt.Errorf("command %s: destructive capability outside the destructive group", name)
	}

	registration := &CommandRegistration{
		Name:        name,
		Group:       group,
		Capability:  capability,
		Command:     cmd,
		Description: description,
	}

	r.commands[name] = registration
	r.groupIndex[group] = append(r.groupIndex[group], registration)

	return nil
}

// GetCommand returns a registered command by name
func (r *Registry) GetCommand(name string) (*CommandRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[name]
	return cmd, exists
}

// GetCommandsByGroup returns all commands in a specific group
func (r *Registry) GetCommandsByGroup(group CommandGroup) []*CommandRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groupIndex[group]
}

// IsDestructive reports whether name is registered as a destructive command.
// Unknown commands are treated as destructive; the caller fails closed.
func (r *Registry) IsDestructive(name string) bool {
	reg, exists := r.GetCommand(name)
	if !exists {
		return true
	}
	return reg.Destructive()
}

// GetAllCommands returns all registered commands
func (r *Registry) GetAllCommands() map[string]*CommandRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*CommandRegistration)
	for k, v := range r.commands {
		result[k] = v
	}
	return result
}

// ListGroups returns all command groups and their command counts
func (r *Registry) ListGroups() map[CommandGroup]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[CommandGroup]int)
	for group, commands := range r.groupIndex {
		result[group] = len(commands)
	}
	return result
}
