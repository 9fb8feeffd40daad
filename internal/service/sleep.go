package service

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/events"
	"github.com/yourname/sleepreport/internal/stats"
	"github.com/yourname/sleepreport/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	// clock accepts HH:MM or HH:MM:SS within 00:00:00..23:59:59
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := stats.ParseClock(fl.Field().String())
		return err == nil
	})
	return v
}

type SleepRecordRequest struct {
	SleepTime string `json:"sleep_time" validate:"required,clock"`
	WakeTime  string `json:"wake_time" validate:"required,clock"`
	Wellbeing int    `json:"wellbeing" validate:"required,gte=1,lte=10"`
	Comment   string `json:"comment,omitempty" validate:"omitempty,max=500"`
}

func ValidateSleepRecordRequest(body *SleepRecordRequest) error {
	return validate.Struct(body)
}

// CreateSleepRecord stores the user's record for today. A second record on the
// same day is rejected with storage.ErrDuplicateEntry. The event is best effort:
// a failed publish is logged and the saved record is still returned.
func CreateSleepRecord(ctx context.Context, store storage.RecordStore, pub events.Publisher, logger internal.Logger,
	user *internal.User, body *SleepRecordRequest, now time.Time) (*internal.SleepRecord, error) {
	if err := ValidateSleepRecordRequest(body); err != nil {
		return nil, err
	}
	today := stats.DateOf(now).Format(stats.DateLayout)

	exists, err := store.HasEntry(ctx, user.Login, today)
	if err != nil {
		return nil, fmt.Errorf("checking today's entry: %w", err)
	}
	if exists {
		return nil, storage.ErrDuplicateEntry
	}

	rec := &internal.SleepRecord{
		ID:        uuid.NewString(),
		User:      user.Login,
		Date:      today,
		SleepTime: normalizeClock(body.SleepTime),
		WakeTime:  normalizeClock(body.WakeTime),
		Wellbeing: internal.ScoreOf(body.Wellbeing),
		Comment:   body.Comment,
		CreatedAt: now.UTC(),
	}
	if err := store.SaveRecord(ctx, rec); err != nil {
		return nil, err
	}

	if pub != nil {
		if err := pub.PublishRecordLogged(ctx, rec); err != nil {
			logger.Warnf("publishing record %s: %v", rec.ID, err)
		}
	}
	return rec, nil
}

// normalizeClock pads HH:MM to HH:MM:SS so every backend stores one form.
func normalizeClock(s string) string {
	s = strings.TrimSpace(s)
	if strings.Count(s, ":") == 1 {
		s += ":00"
	}
	return s
}

// SortNewestFirst orders records by date descending. Records with the same
// date keep their relative order.
func SortNewestFirst(records []internal.SleepRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
}
