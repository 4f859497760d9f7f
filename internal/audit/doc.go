// Package audit provides the internal event model, sinks, and asynchronous
// dispatcher behind the realm's audit surface.
package audit
