// Package notification provides a typed listener registry for decision
// outcomes.
//
// A Center is an explicitly constructed component, never process-wide
// state: the client owns one and forwards decision results to it, keeping
// the decision pipeline itself free of side effects. Handlers are invoked
// synchronously in registration order with a typed payload struct per
// notification kind (DecisionPayload, TrackPayload); a panicking handler is
// recovered and logged so one misbehaving listener cannot take down the
// others or the host request.
//
// Registering the same function twice yields two independent registrations:
// Go closures have no usable identity, so deduplication is deliberately the
// caller's concern and each AddHandler returns a distinct ID for removal.
package notification
