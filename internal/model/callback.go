package model

// CallbackType is the closed set of provider callback events. The
// ingestor switches exhaustively over these; anything else is dropped at
// parse time.
type CallbackType string

const (
	CallbackDelivered CallbackType = "delivered"
	CallbackOpened    CallbackType = "opened"
	CallbackClicked   CallbackType = "clicked"
	CallbackBounced   CallbackType = "bounced"
)

// CallbackEvent is one asynchronous notification from the email provider
// about a previously sent message. Reason is only set for bounces.
type CallbackEvent struct {
	Type      CallbackType
	MessageID string
	Reason    string
}

// ValidCallbackType reports whether t is one of the recognized event types.
func ValidCallbackType(t CallbackType) bool {
	switch t {
	case CallbackDelivered, CallbackOpened, CallbackClicked, CallbackBounced:
		return true
	}
	return false
}
