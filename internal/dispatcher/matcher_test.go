package dispatcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/hwnotify/pkg/models"
)

func TestActiveSlots_Weekday(t *testing.T) {
	wednesday := time.Date(2026, time.March, 4, 8, 0, 0, 0, time.UTC)
	slots := activeSlots(wednesday)
	assert.Equal(t, []models.Slot{models.SlotPrimary, models.SlotSecondary, models.SlotWeekday}, slots)
}

func TestActiveSlots_Weekend(t *testing.T) {
	saturday := time.Date(2026, time.March, 7, 8, 0, 0, 0, time.UTC)
	slots := activeSlots(saturday)
	assert.Equal(t, []models.Slot{models.SlotPrimary, models.SlotSecondary, models.SlotWeekend}, slots)
}

func TestArmedSlots(t *testing.T) {
	var cfg models.NotificationConfig
	assert.Empty(t, cfg.ArmedSlots())

	cfg.Primary = "08:05"
	cfg.Weekend = "10:30"
	assert.Equal(t, []models.Slot{models.SlotPrimary, models.SlotWeekend}, cfg.ArmedSlots())
}
