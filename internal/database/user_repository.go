package database

import (
	"encoding/json"
	"fmt"

	"github.com/example/hwnotify/pkg/models"
)

// UserRepository handles database operations for user accounts
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, display_name, setup_complete, notifications_enabled,
	slot_primary, slot_secondary, slot_weekday, slot_weekend,
	push_tokens, created_at, updated_at`

// slotColumn maps a slot name to its column. Only known slots are accepted so
// the slot can never reach the query as raw SQL.
func slotColumn(slot models.Slot) (string, error) {
	switch slot {
	case models.SlotPrimary:
		return "slot_primary", nil
	case models.SlotSecondary:
		return "slot_secondary", nil
	case models.SlotWeekday:
		return "slot_weekday", nil
	case models.SlotWeekend:
		return "slot_weekend", nil
	}
	return "", fmt.Errorf("unknown slot %q", slot)
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(id string) (*models.UserAccount, error) {
	query := DB.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	user, err := scanUser(DB.QueryRow(query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// Upsert inserts a user or updates the existing record
func (r *UserRepository) Upsert(user *models.UserAccount) error {
	tokensJSON, err := json.Marshal(user.PushTokens)
	if err != nil {
		return fmt.Errorf("failed to marshal push tokens: %w", err)
	}

	query := DB.Rebind(`
		INSERT INTO users (
			id, display_name, setup_complete, notifications_enabled,
			slot_primary, slot_secondary, slot_weekday, slot_weekend, push_tokens
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			setup_complete = EXCLUDED.setup_complete,
			notifications_enabled = EXCLUDED.notifications_enabled,
			slot_primary = EXCLUDED.slot_primary,
			slot_secondary = EXCLUDED.slot_secondary,
			slot_weekday = EXCLUDED.slot_weekday,
			slot_weekend = EXCLUDED.slot_weekend,
			push_tokens = EXCLUDED.push_tokens,
			updated_at = CURRENT_TIMESTAMP
	`)

	_, err = DB.Exec(
		query,
		user.ID,
		user.DisplayName,
		user.SetupComplete,
		user.NotificationsEnabled,
		user.Notifications.Primary,
		user.Notifications.Secondary,
		user.Notifications.Weekday,
		user.Notifications.Weekend,
		string(tokensJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// UsersBySlot returns users whose given slot equals the hhmm time string and
// who have notifications enabled. Exact string equality, minute resolution.
func (r *UserRepository) UsersBySlot(slot models.Slot, hhmm string) ([]models.UserAccount, error) {
	column, err := slotColumn(slot)
	if err != nil {
		return nil, err
	}

	query := DB.Rebind("SELECT " + userColumns + " FROM users WHERE notifications_enabled = TRUE AND " + column + " = ?")
	rows, err := DB.Query(query, hhmm)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by slot: %w", err)
	}
	defer rows.Close()

	var users []models.UserAccount
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdatePushTokens overwrites the stored endpoint token list for a user
func (r *UserRepository) UpdatePushTokens(id string, tokens []string) error {
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal push tokens: %w", err)
	}

	query := DB.Rebind("UPDATE users SET push_tokens = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?")
	if _, err := DB.Exec(query, string(tokensJSON), id); err != nil {
		return fmt.Errorf("failed to update push tokens: %w", err)
	}
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(id string) error {
	query := DB.Rebind("DELETE FROM users WHERE id = ?")
	_, err := DB.Exec(query, id)
	return err
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.UserAccount, error) {
	var user models.UserAccount
	var tokensJSON string

	err := row.Scan(
		&user.ID,
		&user.DisplayName,
		&user.SetupComplete,
		&user.NotificationsEnabled,
		&user.Notifications.Primary,
		&user.Notifications.Secondary,
		&user.Notifications.Weekday,
		&user.Notifications.Weekend,
		&tokensJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tokensJSON != "" {
		if err := json.Unmarshal([]byte(tokensJSON), &user.PushTokens); err != nil {
			return nil, fmt.Errorf("failed to parse push tokens: %w", err)
		}
	}
	return &user, nil
}
