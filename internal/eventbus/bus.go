// Package eventbus implements the typed, in-process pub/sub adapter
// (C8). It is the in-process counterpart of the teacher's stream.EventBus
// (internal/stream/bus.go, stub_bus.go): map-of-slices subscriber
// registry under a mutex — but typed on EventType rather than topic
// strings, and delivered asynchronously through one serial queue per
// company symbol instead of Kafka-style partitioning.
package eventbus

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType enumerates the event types C7 emits and consumes.
type EventType string

const (
	DataIngestionCompleted       EventType = "DATA_INGESTION_COMPLETED"
	ForensicAnalysisCompleted    EventType = "FORENSIC_ANALYSIS_COMPLETED"
	RiskScoringCompleted         EventType = "RISK_SCORING_COMPLETED"
	ComplianceValidationCompleted EventType = "COMPLIANCE_VALIDATION_COMPLETED"
	OrchestratorPipelineStarted  EventType = "ORCHESTRATOR_PIPELINE_STARTED"
	OrchestratorPipelineCompleted EventType = "ORCHESTRATOR_PIPELINE_COMPLETED"
	OrchestratorPipelineFailed   EventType = "ORCHESTRATOR_PIPELINE_FAILED"
	OrchestratorJobCancelled     EventType = "ORCHESTRATOR_JOB_CANCELLED"
)

// Event is one typed occurrence published on the bus.
type Event struct {
	Type          EventType
	SourceAgent   string
	CompanySymbol string
	Data          map[string]interface{}
	Timestamp     time.Time
}

// Handler processes one event. A handler error is logged, never
// propagated — delivery is at-most-once and best-effort.
type Handler func(Event)

// Bus is an in-process, per-symbol-ordered publish/subscribe adapter.
// Zero value is not usable; construct with New.
type Bus struct {
	mu       sync.Mutex
	handlers map[EventType][]Handler
	queues   map[string]chan Event // one serial queue per company_symbol
}

// New constructs an empty bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		queues:   make(map[string]chan Event),
	}
}

// Subscribe registers handler for every event of the given type.
// Subscribing to an unknown/unregistered type is allowed — it simply
// never fires until something publishes that type.
func (b *Bus) Subscribe(t EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], handler)
}

// Publish delivers event to every handler registered for its type, at
// most once each, preserving publish order per CompanySymbol. Unknown
// event types (no registered handler) are logged and dropped, not
// fatal, per spec.md §4.8.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.Lock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.Unlock()

	if len(handlers) == 0 {
		log.Warn().Str("event_type", string(event.Type)).Str("symbol", event.CompanySymbol).Msg("unknown event type dropped")
		return
	}

	queue := b.queueFor(event.CompanySymbol)
	queue <- event
}

// queueFor returns (creating if needed) the serial delivery goroutine
// for a company symbol, so concurrent publishes for the same symbol are
// delivered to handlers in publish order.
func (b *Bus) queueFor(symbol string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[symbol]
	if ok {
		return q
	}
	q = make(chan Event, 64)
	b.queues[symbol] = q
	go b.drain(symbol, q)
	return q
}

func (b *Bus) drain(symbol string, q chan Event) {
	for event := range q {
		b.mu.Lock()
		handlers := append([]Handler(nil), b.handlers[event.Type]...)
		b.mu.Unlock()
		for _, h := range handlers {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Error().Interface("panic", r).Str("event_type", string(event.Type)).Msg("event handler panicked")
					}
				}()
				h(event)
			}()
		}
	}
}
