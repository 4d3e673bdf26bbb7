package models

import "time"

// Slot names a user-configurable time-of-day at which reminders may fire.
type Slot string

const (
	// SlotPrimary and SlotSecondary fire every day.
	SlotPrimary   Slot = "primary"
	SlotSecondary Slot = "secondary"
	// SlotWeekday and SlotWeekend fire only on matching days.
	SlotWeekday Slot = "weekday"
	SlotWeekend Slot = "weekend"
)

// NotificationConfig holds a user's reminder time slots. A slot is armed when
// its value is a non-empty zero-padded "HH:MM" string.
type NotificationConfig struct {
	Primary   string `json:"primary" db:"slot_primary"`
	Secondary string `json:"secondary" db:"slot_secondary"`
	Weekday   string `json:"weekday" db:"slot_weekday"`
	Weekend   string `json:"weekend" db:"slot_weekend"`
}

// ArmedSlots returns the slots that have a configured time.
func (c NotificationConfig) ArmedSlots() []Slot {
	var armed []Slot
	if c.Primary != "" {
		armed = append(armed, SlotPrimary)
	}
	if c.Secondary != "" {
		armed = append(armed, SlotSecondary)
	}
	if c.Weekday != "" {
		armed = append(armed, SlotWeekday)
	}
	if c.Weekend != "" {
		armed = append(armed, SlotWeekend)
	}
	return armed
}

// UserAccount represents a registered user of the homework planner
type UserAccount struct {
	ID                   string             `json:"id" db:"id"`
	DisplayName          string             `json:"display_name" db:"display_name"`
	SetupComplete        bool               `json:"setup_complete" db:"setup_complete"`
	NotificationsEnabled bool               `json:"notifications_enabled" db:"notifications_enabled"`
	Notifications        NotificationConfig `json:"notifications"`
	PushTokens           []string           `json:"push_tokens" db:"push_tokens"` // Ordered device token list
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}

// Notifiable reports whether the account can be a dispatch target at all:
// onboarding finished, notifications on, and at least one registered device.
func (u *UserAccount) Notifiable() bool {
	return u.SetupComplete && u.NotificationsEnabled && len(u.PushTokens) > 0
}
