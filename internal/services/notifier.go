package services

import "github.com/harimoradiya/rmspos/internal/notifications"

// Notifier publishes events to an outlet's subscribers. Satisfied by
// *notifications.Hub. Delivery is best-effort; engines broadcast only
// after their transaction commits and never fail an operation over it.
type Notifier interface {
	Broadcast(outletID int64, event notifications.Event)
}
