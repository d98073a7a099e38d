// Package transport is the email-sending capability. It is constructed
// once at startup and passed by reference into the dispatcher; availability
// is a method on the object, not environment inspection at call sites.
package transport

import "context"

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Transport sends a single message and returns the provider message id.
// There is no batch primitive; batching belongs to the dispatcher.
type Transport interface {
	Available() bool
	Send(ctx context.Context, msg Message) (string, error)
}
