package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/otbridge/plantgate/internal/namespace"
	"github.com/otbridge/plantgate/internal/plant"
	"github.com/otbridge/plantgate/internal/policy"
	"go.uber.org/zap"
)

// Initialization failure classes. Authorization denial is deliberately not
// among them: a denial is a policy decision, not a fault.
var (
	// ErrConfigUnavailable: a required configuration key cannot be resolved.
	ErrConfigUnavailable = errors.New("plant configuration unavailable")
	// ErrDocumentUnreadable: an instruction-document path resolves but its
	// content cannot be read.
	ErrDocumentUnreadable = errors.New("instruction document unreadable")
)

// Configuration keys fetched from the plant during initialization, in
// fetch order.
const (
	keyTLSKeyPath     = "tls_key_path"
	keyTLSCertPath    = "tls_cert_path"
	keyAPIToken       = "api_token"
	keyFieldDocPath   = "field_instructions_path"
	keyProjectDocPath = "project_instructions_path"
	keyNamespaceView  = "namespace_view"
)

var configKeys = []string{
	keyTLSKeyPath,
	keyTLSCertPath,
	keyAPIToken,
	keyFieldDocPath,
	keyProjectDocPath,
	keyNamespaceView,
}

// Sources are the external capabilities initialization reads from.
type Sources struct {
	Config    plant.ConfigSource
	Documents plant.DocumentStore
	Namespace plant.NamespaceProvider
}

// Manager guards the once-per-process initialization of the RuntimeState.
//
// Get is safe for concurrent use: the first caller runs the full
// initialization sequence while every other caller blocks on the guard and
// then observes the published state. A failed initialization publishes
// nothing, so the next call retries from the top. sync.Once would make the
// failure permanent, which is why the guard is a semaphore around
// check-then-build; a channel also lets waiters honor cancellation.
type Manager struct {
	sources Sources
	logger  *zap.Logger

	mu    chan struct{} // buffered size-1 semaphore; held across init I/O
	state *RuntimeState // nil until the first successful initialization
}

// NewManager creates a Manager. No I/O happens until the first Get.
func NewManager(sources Sources, logger *zap.Logger) *Manager {
	m := &Manager{
		sources: sources,
		logger:  logger,
		mu:      make(chan struct{}, 1),
	}
	m.mu <- struct{}{}
	return m
}

// Get returns the runtime state, initializing it on first use. Concurrent
// first-time callers block until the one in-flight initialization finishes
// and then all receive the same instance. On failure nothing is cached and
// the error is returned to the caller that held the guard; blocked callers
// retry in turn.
func (m *Manager) Get(ctx context.Context) (*RuntimeState, error) {
	select {
	case <-m.mu:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { m.mu <- struct{}{} }()

	if m.state != nil {
		return m.state, nil
	}

	st, err := m.initialize(ctx)
	if err != nil {
		return nil, err
	}
	m.state = st
	return st, nil
}

// initialize runs the full sequence: credentials and paths from the plant
// configuration, both instruction documents, policy derivation, namespace
// snapshot. Strictly in that order; any failure discards everything.
func (m *Manager) initialize(ctx context.Context) (*RuntimeState, error) {
	values, err := m.sources.Config.GetValues(ctx, configKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	if len(values) != len(configKeys) {
		return nil, fmt.Errorf("%w: got %d values for %d keys", ErrConfigUnavailable, len(values), len(configKeys))
	}
	creds := Credentials{KeyPath: values[0], CertPath: values[1], Token: values[2]}
	fieldPath, projectPath, view := values[3], values[4], values[5]

	fieldText, err := m.sources.Documents.ReadText(ctx, fieldPath)
	if err != nil {
		return nil, fmt.Errorf("%w: field document: %v", ErrDocumentUnreadable, err)
	}
	projectText, err := m.sources.Documents.ReadText(ctx, projectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: project document: %v", ErrDocumentUnreadable, err)
	}

	effective := policy.Merge(policy.Extract(fieldText), policy.Extract(projectText))

	snapshot, err := namespace.Build(ctx, m.sources.Namespace, view)
	if err != nil {
		return nil, err
	}

	m.logger.Info("runtime state initialized",
		zap.String("namespace_view", view),
		zap.Int("allowed_patterns", effective.Len()),
		zap.Strings("patterns", effective.Patterns()),
	)

	return &RuntimeState{
		creds:       creds,
		fieldText:   fieldText,
		projectText: projectText,
		policy:      effective,
		snapshot:    snapshot,
	}, nil
}
