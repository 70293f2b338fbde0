package models

// Notification is the payload pushed over the live-update channel. Field
// names are part of the wire contract with clients.
type Notification struct {
	Type                    string `json:"type"`
	Message                 string `json:"message"`
	ShowBrowserNotification bool   `json:"showBrowserNotification"`
}

const NotificationTypeReminder = "notification"
