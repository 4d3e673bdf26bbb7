package dispatcher

import (
	"time"

	"go.uber.org/zap"

	"github.com/example/hwnotify/pkg/models"
)

// activeSlots returns the slot kinds that can fire at the given instant: the
// two everyday slots plus the weekday or weekend variant matching the day.
func activeSlots(now time.Time) []models.Slot {
	slots := []models.Slot{models.SlotPrimary, models.SlotSecondary}
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		slots = append(slots, models.SlotWeekend)
	default:
		slots = append(slots, models.SlotWeekday)
	}
	return slots
}

// matchUsers queries each active slot for users configured at exactly hhmm and
// unions the results. A user returned by more than one slot query is kept
// once, first record wins. A failing slot query is logged and skipped so the
// remaining slots still match.
func (d *Dispatcher) matchUsers(now time.Time, hhmm string) []models.UserAccount {
	seen := make(map[string]bool)
	var matched []models.UserAccount

	for _, slot := range activeSlots(now) {
		users, err := d.users.UsersBySlot(slot, hhmm)
		if err != nil {
			d.log.Error("slot query failed",
				zap.String("slot", string(slot)),
				zap.String("time", hhmm),
				zap.Error(err),
			)
			continue
		}
		for _, user := range users {
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true
			matched = append(matched, user)
		}
	}
	return matched
}
