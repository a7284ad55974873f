package notification

import (
	"fmt"
	"log/slog"
	"sync"
)

// Handler receives notification payloads. The concrete payload type depends
// on the notification type the handler was registered for.
type Handler func(payload any)

type registration struct {
	id      int
	handler Handler
}

// Center is a typed notification registry. It is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	nextID   int
	handlers map[Type][]registration
	logger   *slog.Logger
}

// CenterOption configures a Center.
type CenterOption func(*Center)

// WithLogger sets the logger used for handler failures.
func WithLogger(logger *slog.Logger) CenterOption {
	return func(c *Center) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCenter creates an empty notification center.
func NewCenter(opts ...CenterOption) *Center {
	c := &Center{
		nextID:   1,
		handlers: make(map[Type][]registration),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddHandler registers a handler for a notification type and returns an ID
// for later removal.
func (c *Center) AddHandler(t Type, handler Handler) (int, error) {
	if !t.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	if handler == nil {
		return 0, ErrNilHandler
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.handlers[t] = append(c.handlers[t], registration{id: id, handler: handler})
	return id, nil
}

// RemoveHandler unregisters the handler with the given ID from a
// notification type.
func (c *Center) RemoveHandler(t Type, id int) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	registrations := c.handlers[t]
	for i, reg := range registrations {
		if reg.id == id {
			c.handlers[t] = append(registrations[:i:i], registrations[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: id %d for type %q", ErrHandlerNotFound, id, t)
}

// Clear unregisters every handler for a notification type.
func (c *Center) Clear(t Type) {
	c.mu.Lock()
	delete(c.handlers, t)
	c.mu.Unlock()
}

// ClearAll unregisters every handler of every type.
func (c *Center) ClearAll() {
	c.mu.Lock()
	c.handlers = make(map[Type][]registration)
	c.mu.Unlock()
}

// Send invokes every handler registered for the notification type, in
// registration order. Handler panics are recovered and logged; they never
// propagate to the caller.
func (c *Center) Send(t Type, payload any) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}

	c.mu.Lock()
	registrations := make([]registration, len(c.handlers[t]))
	copy(registrations, c.handlers[t])
	c.mu.Unlock()

	for _, reg := range registrations {
		c.invoke(t, reg, payload)
	}
	return nil
}

func (c *Center) invoke(t Type, reg registration, payload any) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("notification handler panicked",
				"type", string(t),
				"handler_id", reg.id,
				"panic", r)
		}
	}()
	reg.handler(payload)
}
