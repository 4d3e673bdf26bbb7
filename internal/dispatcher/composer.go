package dispatcher

import (
	"fmt"
	"strings"
)

// ReminderTitle is the fixed title of every homework reminder.
const ReminderTitle = "Homework Reminder"

// Compose builds the reminder title and body from the user's display name and
// the distinct subject list. Pure; no truncation is applied however long the
// subject list grows.
func Compose(displayName string, subjects []string) (title, body string) {
	title = ReminderTitle
	body = fmt.Sprintf("Hi, %s! Don't forget, you still have work for: %s.",
		displayName, strings.Join(subjects, ", "))
	return title, body
}
