// Package events publishes search lifecycle events on a typed event bus so
// audit and telemetry subscribers can follow what the backoffice searches.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	goevents "github.com/asaidimu/go-events"
	"github.com/google/uuid"
)

// SearchEventType is the kind of a search event.
type SearchEventType string

const (
	SearchCompileSuccess SearchEventType = "search:compile:success"
	SearchCompileFailed  SearchEventType = "search:compile:failed"
	SearchExecuteStart   SearchEventType = "search:execute:start"
	SearchExecuteSuccess SearchEventType = "search:execute:success"
	SearchExecuteFailed  SearchEventType = "search:execute:failed"
)

// SearchEvent describes one step of a search.
type SearchEvent struct {
	Type      SearchEventType `json:"type"`                // The type of event.
	Timestamp int64           `json:"timestamp"`           // Unix milliseconds.
	Operation string          `json:"operation"`           // The operation being performed, e.g. "search".
	Resource  string          `json:"resource"`            // Searched resource, e.g. "offers".
	Input     any             `json:"input,omitempty"`     // Submitted rows.
	Output    any             `json:"output,omitempty"`    // Result summary.
	Error     *string         `json:"error,omitempty"`     // Error message if the operation failed.
	Warnings  []string        `json:"warnings,omitempty"`  // Compiler warnings.
	Joins     []string        `json:"joins,omitempty"`     // Joins applied by the compiler.
	Duration  *int64          `json:"duration,omitempty"`  // Duration of the operation in milliseconds.
	RequestID string          `json:"requestId,omitempty"` // Correlation id of the HTTP request.
}

// NewEvent builds an event. A zero start time leaves Duration unset.
func NewEvent(
	eventType SearchEventType,
	operation string,
	resource string,
	input any,
	output any,
	err error,
	startTime time.Time,
) SearchEvent {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	var errStr *string
	if err != nil {
		s := err.Error()
		errStr = &s
	}

	return SearchEvent{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Operation: operation,
		Resource:  resource,
		Input:     input,
		Output:    output,
		Error:     errStr,
		Duration:  duration,
	}
}

// Callback handles a search event.
type Callback func(ctx context.Context, event SearchEvent) error

// Emitter wraps the event bus and keeps track of subscriptions by id.
type Emitter struct {
	bus           *goevents.TypedEventBus[SearchEvent]
	subscriptions map[string]func()
	mu            sync.Mutex
}

// NewEmitter creates an emitter with the default bus configuration.
func NewEmitter() (*Emitter, error) {
	bus, err := goevents.NewTypedEventBus[SearchEvent](goevents.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	return &Emitter{
		bus:           bus,
		subscriptions: map[string]func(){},
	}, nil
}

// Emit publishes event. A nil emitter drops it.
func (e *Emitter) Emit(event SearchEvent) {
	if e == nil || e.bus == nil {
		return
	}
	e.bus.Emit(string(event.Type), event)
}

// Subscribe registers callback for an event type and returns the
// subscription id.
func (e *Emitter) Subscribe(event SearchEventType, callback Callback) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	unsubscribe := e.bus.Subscribe(string(event), callback)
	id := uuid.New().String()
	e.subscriptions[id] = unsubscribe
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (e *Emitter) Unsubscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if unsubscribe, ok := e.subscriptions[id]; ok {
		unsubscribe()
		delete(e.subscriptions, id)
	}
}

// Subscriptions returns the number of active subscriptions.
func (e *Emitter) Subscriptions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subscriptions)
}
