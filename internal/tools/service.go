package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/otbridge/plantgate/internal/plant"
	"github.com/otbridge/plantgate/internal/policy"
	"github.com/otbridge/plantgate/internal/state"
	"github.com/otbridge/plantgate/internal/storage"
	"go.uber.org/zap"
)

// Error is a tool-call failure with an HTTP-style status code. Denials,
// schema violations, and driver faults all surface as *Error so the
// transport can map them uniformly.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

func newError(code int, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Service executes tool calls. Every call first obtains the runtime state
// (triggering one-time initialization if needed); mutating calls are gated
// through the effective policy before the driver is touched. One audit
// event is emitted per call.
type Service struct {
	registry  *Registry
	state     *state.Manager
	driver    plant.Driver
	namespace plant.NamespaceProvider
	writer    storage.EventWriter
	logger    *zap.Logger
}

// NewService creates a Service with the given collaborators.
func NewService(
	registry *Registry,
	stateMgr *state.Manager,
	driver plant.Driver,
	ns plant.NamespaceProvider,
	writer storage.EventWriter,
	logger *zap.Logger,
) *Service {
	return &Service{
		registry:  registry,
		state:     stateMgr,
		driver:    driver,
		namespace: ns,
		writer:    writer,
		logger:    logger,
	}
}

// Definitions returns the registered tool definitions for listing.
func (s *Service) Definitions() []*Definition { return s.registry.List() }

// State exposes the runtime-state manager so the transport can trigger
// initialization for auth without going through a tool call.
func (s *Service) State() *state.Manager { return s.state }

// Call executes a named tool. The returned request ID identifies the call
// in the audit trail whether it succeeded or not.
func (s *Service) Call(ctx context.Context, name string, args json.RawMessage) (result any, requestID string, callErr *Error) {
	start := time.Now()
	requestID = uuid.New().String()

	def, ok := s.registry.Get(name)
	if !ok {
		s.audit(requestID, name, "", args, storage.VerdictError, "unknown tool", nil, start)
		return nil, requestID, newError(http.StatusNotFound, "unknown tool %q", name)
	}

	st, err := s.state.Get(ctx)
	if err != nil {
		s.logger.Error("runtime state initialization failed",
			zap.String("tool", name),
			zap.Error(err),
		)
		s.audit(requestID, name, "", args, storage.VerdictError, err.Error(), nil, start)
		return nil, requestID, newError(http.StatusServiceUnavailable, "gateway not ready: %v", err)
	}

	if err := def.ValidateArguments(args); err != nil {
		s.audit(requestID, name, "", args, storage.VerdictError, "invalid arguments", nil, start)
		return nil, requestID, newError(http.StatusBadRequest, "invalid arguments for %q: %v", name, err)
	}

	var decoded map[string]any
	if len(args) > 0 {
		// Already validated against the schema.
		_ = json.Unmarshal(args, &decoded)
	}

	switch name {
	case ToolReadDatapoint:
		result, callErr = s.readDatapoint(ctx, decoded)
	case ToolWriteDatapoint:
		result, callErr = s.writeDatapoint(ctx, st, requestID, args, decoded, start)
		// writeDatapoint audits itself; verdicts differ per outcome.
		return result, requestID, callErr
	case ToolBrowsePlant:
		result = map[string]any{"plant": st.Snapshot()}
	case ToolListViews:
		result, callErr = s.listViews(ctx)
	case ToolGetInstructions:
		result = map[string]any{"instructions": st.Instructions()}
	case ToolGetWritePolicy:
		result = map[string]any{"allowed_patterns": st.Policy().Patterns()}
	}

	verdict := storage.VerdictAllowed
	reason := ""
	if callErr != nil {
		verdict = storage.VerdictError
		reason = callErr.Message
	}
	s.audit(requestID, name, targetOf(decoded), args, verdict, reason, nil, start)
	return result, requestID, callErr
}

func (s *Service) readDatapoint(ctx context.Context, args map[string]any) (any, *Error) {
	name, _ := args["name"].(string)
	value, err := s.driver.ReadDatapoint(ctx, name)
	if err != nil {
		return nil, newError(http.StatusBadGateway, "read %q: %v", name, err)
	}
	return map[string]any{"name": name, "value": value}, nil
}

// writeDatapoint is the one mutating tool: the target must pass the
// effective policy before the driver is called, and a denial reports the
// complete allowed-pattern list.
func (s *Service) writeDatapoint(ctx context.Context, st *state.RuntimeState, requestID string, raw json.RawMessage, args map[string]any, start time.Time) (any, *Error) {
	name, _ := args["name"].(string)
	value := args["value"]

	decision := policy.Authorize(name, st.Policy())
	if !decision.Allowed {
		s.logger.Warn("write denied",
			zap.String("request_id", requestID),
			zap.String("datapoint", name),
			zap.Strings("allowed_patterns", decision.AllowedPatterns),
		)
		s.audit(requestID, ToolWriteDatapoint, name, raw, storage.VerdictDenied,
			decision.DenialMessage(), decision.AllowedPatterns, start)
		return nil, newError(http.StatusForbidden, "%s", decision.DenialMessage())
	}

	if err := s.driver.WriteDatapoint(ctx, name, value); err != nil {
		s.audit(requestID, ToolWriteDatapoint, name, raw, storage.VerdictError, err.Error(), nil, start)
		return nil, newError(http.StatusBadGateway, "write %q: %v", name, err)
	}

	s.audit(requestID, ToolWriteDatapoint, name, raw, storage.VerdictAllowed, "", nil, start)
	return map[string]any{"name": name, "value": value, "written": true}, nil
}

func (s *Service) listViews(ctx context.Context) (any, *Error) {
	views, err := s.namespace.ListViews(ctx)
	if err != nil {
		return nil, newError(http.StatusBadGateway, "list views: %v", err)
	}
	return map[string]any{"views": views}, nil
}

func (s *Service) audit(requestID, tool, target string, args json.RawMessage, verdict, reason string, patterns []string, start time.Time) {
	s.writer.Write(&storage.ToolCallEvent{
		RequestID:       requestID,
		Timestamp:       time.Now(),
		Tool:            tool,
		Target:          target,
		ArgumentsJSON:   storage.TruncateArguments(string(args), storage.ArgumentsPreviewLength),
		Verdict:         verdict,
		Reason:          reason,
		AllowedPatterns: patterns,
		LatencyMs:       float32(float64(time.Since(start)) / float64(time.Millisecond)),
		Source:          "http",
	})
}

func targetOf(args map[string]any) string {
	name, _ := args["name"].(string)
	return name
}
