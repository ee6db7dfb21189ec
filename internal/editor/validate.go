package editor

import (
	"strconv"
	"strings"
	"time"

	"github.com/gcclean/trash-service/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	maxQuantity = 1<<31 - 1
)

var dateLayouts = []string{
	time.RFC3339,
	dateLayout,
	"2006-01-02T15:04:05",
}

// validate checks the draft in a fixed order and returns the first problem.
func validate(d Draft) (model.WasteRecord, error) {
	category := model.Category(strings.TrimSpace(string(d.Category)))
	custom := strings.TrimSpace(d.CustomCategory)
	floor := strings.TrimSpace(d.Floor)
	room := strings.TrimSpace(d.Room)
	occurred := strings.TrimSpace(d.OccurredAt)

	if category == "" ||
		(category == model.CategoryOther && custom == "") ||
		floor == "" ||
		room == "" ||
		occurred == "" ||
		d.Quantity == "" {
		return model.WasteRecord{}, invalid("Please fill in all required fields.")
	}
	if !category.Valid() {
		return model.WasteRecord{}, invalid("Please select a valid trash type.")
	}
	if category == model.CategoryOther && strings.EqualFold(custom, string(model.CategoryOther)) {
		return model.WasteRecord{}, invalid("Please specify the trash type.")
	}

	if !isDigits(d.Quantity) {
		return model.WasteRecord{}, invalid("Quantity must be a whole number.")
	}
	qty, err := strconv.Atoi(d.Quantity)
	if err != nil || qty > maxQuantity {
		return model.WasteRecord{}, invalid("Quantity is too large.")
	}
	if qty <= 0 {
		return model.WasteRecord{}, invalid("Quantity must be greater than 0.")
	}

	at, ok := parseDate(occurred)
	if !ok {
		return model.WasteRecord{}, invalid("Please enter a valid date.")
	}

	rec := model.WasteRecord{
		Category:   category,
		Quantity:   qty,
		Floor:      floor,
		Room:       room,
		OccurredAt: at,
	}
	if category == model.CategoryOther {
		rec.CustomCategory = custom
	}
	return rec, nil
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	return s != "" && digitsOnly(s) == s
}
