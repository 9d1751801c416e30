package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Client-to-gateway events.
const (
	EventJoin     = "join-notifications"
	EventMarkRead = "mark-notification-read"
)

// Gateway-to-client events.
const (
	EventNotification      = "notification"
	EventNotificationCount = "notification-count"
	EventError             = "error"
)

// Event is one frame on the live channel: {"event": name, "data": payload}.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

type inboundEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// CountPayload is the data of a notification-count event.
type CountPayload struct {
	UnreadCount int64 `json:"unreadCount"`
}

// ErrorPayload is the data of an error event. Event names the request that failed.
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

type joinPayload struct {
	UserID flexID `json:"userId"`
}

type markReadPayload struct {
	NotificationID flexID `json:"notificationId"`
	UserID         flexID `json:"userId"`
}

type relayPayload struct {
	UserID flexID `json:"userId"`
}

// flexID accepts both 7 and "7"; clients differ in how they encode ids.
type flexID uint

func (u *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*u = 0
		return nil
	}
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", b)
	}
	*u = flexID(n)
	return nil
}

func countEvent(count int64) Event {
	return Event{Name: EventNotificationCount, Data: CountPayload{UnreadCount: count}}
}

func errorEvent(event, message string) Event {
	return Event{Name: EventError, Data: ErrorPayload{Event: event, Message: message}}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("missing data")
	}
	return json.Unmarshal(data, v)
}
