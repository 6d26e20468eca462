// posthog_client.go provides a wrapper around the posthog.Client to make it easier to use and handle when its not initialized.
package utils

import (
	"log/slog"

	"github.com/SscSPs/ledger_intake/internal/core/domain"
	"github.com/posthog/posthog-go"
)

// PosthogClientWrapper is the AnalyticsSvc. A wrapper without a client drops every event.
type PosthogClientWrapper struct {
	posthogClient posthog.Client
	logger        *slog.Logger
}

func InitializePosthogClient(apiKey, endpoint string, logger *slog.Logger) *PosthogClientWrapper {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return &PosthogClientWrapper{logger: logger}
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("error", err.Error()))
		return &PosthogClientWrapper{logger: logger}
	}
	logger.Info("Posthog client initialized", slog.String("endpoint", endpoint))
	return NewPosthogClientWrapper(client, logger)
}

// NewPosthogClientWrapper wraps an existing client.
func NewPosthogClientWrapper(client posthog.Client, logger *slog.Logger) *PosthogClientWrapper {
	return &PosthogClientWrapper{posthogClient: client, logger: logger}
}

func (w *PosthogClientWrapper) IsInitialized() bool {
	return w != nil && w.posthogClient != nil
}

// Capture sends an event attributed to the actor and grouped by organization.
func (w *PosthogClientWrapper) Capture(actor domain.Actor, event string, properties map[string]any) {
	msg := posthog.Capture{
		DistinctId: actor.UserID,
		Event:      event,
		Properties: properties,
	}
	if actor.OrgID != "" {
		msg.Groups = posthog.NewGroups().Set("organization", actor.OrgID)
	}
	w.enqueue(msg)
}

func (w *PosthogClientWrapper) enqueue(msg posthog.Capture) {
	if !w.IsInitialized() {
		return
	}
	if w.logger != nil {
		w.logger.Debug("Enqueueing event", slog.String("distinct_id", msg.DistinctId), slog.String("event", msg.Event))
	}
	if err := w.posthogClient.Enqueue(msg); err != nil && w.logger != nil {
		w.logger.Warn("Failed to enqueue event", slog.String("event", msg.Event), slog.String("error", err.Error()))
	}
}

func (w *PosthogClientWrapper) Close() {
	if !w.IsInitialized() {
		return
	}
	w.posthogClient.Close()
}
