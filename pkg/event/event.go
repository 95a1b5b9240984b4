// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	SimulationStarted Type = "simulation_started"
	SimulationStopped Type = "simulation_stopped"
	TickCompleted     Type = "tick_completed"
	CollisionDetected Type = "collision_detected"
	CheckpointSaved   Type = "checkpoint_saved"
	CheckpointFailed  Type = "checkpoint_failed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed later
type Subscription struct {
	id        uint64
	eventType Type
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine, in subscription order.
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{id: b.nextID, eventType: eventType}
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: sub.id, handler: handler})
	return sub
}

// Unsubscribe removes a previously registered handler. It reports whether
// the subscription was found.
func (b *Bus) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[sub.eventType]
	for i, r := range regs {
		if r.id == sub.id {
			b.handlers[sub.eventType] = append(regs[:i:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	regs := b.handlers[event.GetType()]
	handlers := make([]Handler, len(regs))
	for i, r := range regs {
		handlers[i] = r.handler
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// CollisionEvent reports one agent's collision with an obstacle
type CollisionEvent struct {
	BaseEvent
	Tick         uint64
	AgentID      uint64
	Score        float64 // obstacle cells under the swept region
	RetreatSteps int
	Turn         float64 // radians applied during recovery
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, tick, agentID uint64, score float64, retreatSteps int, turn float64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: CollisionDetected,
			Source:    source,
		},
		Tick:         tick,
		AgentID:      agentID,
		Score:        score,
		RetreatSteps: retreatSteps,
		Turn:         turn,
	}
}

// TickEvent summarizes a completed simulation tick
type TickEvent struct {
	BaseEvent
	Tick       uint64
	Collisions int
	MeanBelief float64
}

// NewTickEvent creates a new tick event
func NewTickEvent(source interface{}, tick uint64, collisions int, meanBelief float64) *TickEvent {
	return &TickEvent{
		BaseEvent: BaseEvent{
			EventType: TickCompleted,
			Source:    source,
		},
		Tick:       tick,
		Collisions: collisions,
		MeanBelief: meanBelief,
	}
}

// CheckpointEvent reports the outcome of persisting a belief snapshot
type CheckpointEvent struct {
	BaseEvent
	Tick       uint64
	SnapshotID int64
	Err        error
}

// NewCheckpointEvent creates a checkpoint event; a non-nil err makes it a
// CheckpointFailed event
func NewCheckpointEvent(source interface{}, tick uint64, snapshotID int64, err error) *CheckpointEvent {
	t := CheckpointSaved
	if err != nil {
		t = CheckpointFailed
	}
	return &CheckpointEvent{
		BaseEvent: BaseEvent{
			EventType: t,
			Source:    source,
		},
		Tick:       tick,
		SnapshotID: snapshotID,
		Err:        err,
	}
}
