package client

import (
	"log"
	"sync"

	"github.com/gen2brain/beeep"
)

// Permission tracks the desktop-notification permission for a session.
// Granted and denied are terminal; the permission is requested at most once.
type Permission int

const (
	PermissionUnrequested Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unrequested"
	}
}

// Notifier gates OS-level notifications behind the session permission.
// Delivery failures degrade silently to in-app alerts only.
type Notifier struct {
	mu         sync.Mutex
	permission Permission
	enabled    bool
	notify     func(title, body string) error
}

// NewNotifier creates a notifier. enabled reflects whether the user allows
// desktop notifications for this session; the permission is not resolved
// until RequestPermission is called.
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		notify: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
	}
}

// RequestPermission resolves the permission on first call and reports whether
// notifications are allowed. Subsequent calls return the settled state
// without asking again.
func (n *Notifier) RequestPermission() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.permission == PermissionUnrequested {
		if n.enabled {
			n.permission = PermissionGranted
		} else {
			n.permission = PermissionDenied
		}
		log.Printf("[NOTIFY] Desktop notification permission: %s", n.permission)
	}
	return n.permission == PermissionGranted
}

// Permission returns the current permission state.
func (n *Notifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

// Show raises a desktop notification when permission is granted. It is a
// no-op otherwise, and never fails the caller.
func (n *Notifier) Show(title, body string) {
	n.mu.Lock()
	granted := n.permission == PermissionGranted
	notify := n.notify
	n.mu.Unlock()

	if !granted {
		return
	}
	if err := notify(title, body); err != nil {
		log.Printf("[NOTIFY] Desktop notification failed: %v", err)
	}
}
