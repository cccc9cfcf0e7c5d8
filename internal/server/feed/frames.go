package feed

import (
	"github.com/colonyops/beacon/internal/core/notify"
	"github.com/colonyops/beacon/internal/core/toast"
)

type notificationFrame struct {
	Kind         string              `json:"kind"`
	Notification notify.Notification `json:"notification"`
	Unread       int                 `json:"unread"`
}

type toastFrame struct {
	Kind   string      `json:"kind"`
	Toast  toast.Toast `json:"toast"`
	Reason string      `json:"reason,omitempty"`
}

// Snapshot is the state sent to a client when it connects.
type Snapshot struct {
	Notifications []notify.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
	Toasts        []toast.Toast         `json:"toasts"`
}
