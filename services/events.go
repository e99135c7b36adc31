package services

import (
	"errors"

	"github.com/yeremiapane/pc-cafe/utils"
)

// Broadcaster receives domain events for the live admin feed. *hub.Hub
// satisfies it.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, interface{}) {}

func broadcasterOrNoop(b Broadcaster) Broadcaster {
	if b == nil {
		return noopBroadcaster{}
	}
	return b
}

// wrapErr passes AppErrors through and hides anything else behind an
// internal error carrying msg.
func wrapErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return utils.Internal(msg, err)
}
