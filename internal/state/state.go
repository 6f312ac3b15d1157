// Package state owns the gateway's process-wide runtime state: credentials,
// the two instruction documents, the effective write policy derived from
// them, and the namespace snapshot. The state is assembled exactly once per
// process and is immutable afterwards.
package state

import (
	"github.com/otbridge/plantgate/internal/namespace"
	"github.com/otbridge/plantgate/internal/policy"
)

// Credentials holds the material resolved from the plant configuration:
// TLS key/cert paths and the opaque bearer token API callers must present.
type Credentials struct {
	KeyPath  string
	CertPath string
	Token    string
}

// RuntimeState is the fully assembled singleton. All accessors are pure
// memory reads; there are no setters. The only way to change effective
// state is a process restart.
type RuntimeState struct {
	creds       Credentials
	fieldText   string
	projectText string
	policy      *policy.RuleSet
	snapshot    *namespace.Node
}

// Credentials returns the resolved credential material.
func (s *RuntimeState) Credentials() Credentials { return s.creds }

// Instructions returns the merged instruction text, field document first,
// for display and audit.
func (s *RuntimeState) Instructions() string {
	return s.fieldText + "\n\n" + s.projectText
}

// Policy returns the effective write policy (field rules merged with
// project rules).
func (s *RuntimeState) Policy() *policy.RuleSet { return s.policy }

// Snapshot returns the namespace snapshot built at initialization.
func (s *RuntimeState) Snapshot() *namespace.Node { return s.snapshot }
