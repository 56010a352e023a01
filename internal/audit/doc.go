// Package audit relays security events from the engine to a Sink without
// blocking the request path.
//
// A Dispatcher owns a bounded queue and one delivery goroutine. When the
// queue is full it either drops the event and counts it, or blocks the
// caller, depending on configuration. A disabled Dispatcher, and a nil one,
// accept and discard every event.
//
// The package decides nothing about which events exist; callers build
// Event values and this package only moves them.
package audit
