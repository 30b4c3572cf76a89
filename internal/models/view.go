package models

import "time"

// TunnelState is the rendered status of a row
type TunnelState string

const (
	StateUp   TunnelState = "UP"
	StateDown TunnelState = "DOWN"
)

// StateFromStatus maps the snapshot "up"/"down" field to a rendered state.
func StateFromStatus(status string) TunnelState {
	if status == "up" {
		return StateUp
	}
	return StateDown
}

// StateFromHealth maps a probe result to a rendered state.
func StateFromHealth(healthy bool) TunnelState {
	if healthy {
		return StateUp
	}
	return StateDown
}

// StatusSource records which path last wrote a row's status
type StatusSource string

const (
	SourceSnapshot StatusSource = "snapshot"
	SourceProbe    StatusSource = "probe"
)

// TunnelRow is one row of the live table. Everything except Status and
// StatusSource comes from the last snapshot and is never patched.
type TunnelRow struct {
	TunnelID     int          `json:"tunnelId"`
	HasID        bool         `json:"hasId"`
	Position     int          `json:"position"`
	Name         string       `json:"name"`
	Port         string       `json:"port"`
	Status       TunnelState  `json:"status"`
	StatusSource StatusSource `json:"statusSource"`
	TimeAlive    string       `json:"timeAlive"`
	Entrypoint   string       `json:"entrypoint"`
	EntrypointIP string       `json:"entrypointIp"`
	Exitpoint    string       `json:"exitpoint"`
	ExitpointIP  string       `json:"exitpointIp"`
	Memory       string       `json:"memory"`
}

// TableView is a point-in-time copy of the live table
type TableView struct {
	Generation    uint64      `json:"generation"`
	TotalMemoryMB float64     `json:"totalMemoryMb"`
	Rows          []TunnelRow `json:"rows"`
	RefreshedAt   time.Time   `json:"refreshedAt"`
	ProbedAt      time.Time   `json:"probedAt"`
}

// Severity of a notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a transient operator message
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// EventKind identifies what changed in the view
type EventKind string

const (
	EventSnapshot     EventKind = "snapshot"
	EventHealth       EventKind = "health"
	EventNotification EventKind = "notification"
	EventDismiss      EventKind = "dismiss"
)

// ViewEvent is published to subscribers on every view change. Snapshot events carry
// the whole table, health events carry only the patched status per tunnel id.
type ViewEvent struct {
	Kind         EventKind           `json:"kind"`
	Generation   uint64              `json:"generation"`
	View         *TableView          `json:"view,omitempty"`
	Health       map[int]TunnelState `json:"health,omitempty"`
	Notification *Notification       `json:"notification,omitempty"`
}
