package internal

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       string `json:"id"`
	Login    string `json:"login"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SleepRecord is one night as the record store keeps it. Time fields are kept
// as the raw strings the store returned; stats.Normalize parses them.
type SleepRecord struct {
	ID        string         `json:"id"`
	User      string         `json:"login"`
	Date      string         `json:"date"`       // YYYY-MM-DD
	SleepTime string         `json:"sleep_time"` // HH:MM or HH:MM:SS
	WakeTime  string         `json:"wake_time"`
	Wellbeing WellbeingScore `json:"wellbeing"`
	Comment   string         `json:"comment,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// WellbeingScore is the self-reported 1-10 score. Stores hand it back either as
// a JSON number or as a string, so the raw text is kept and parsed later.
type WellbeingScore string

func ScoreOf(v int) WellbeingScore {
	return WellbeingScore(strconv.Itoa(v))
}

// Int parses the score. ok is false for empty or non-integer values.
func (w WellbeingScore) Int() (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(string(w)))
	if err != nil {
		return 0, false
	}
	return v, true
}

func (w *WellbeingScore) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*w = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = WellbeingScore(s)
		return nil
	}
	*w = WellbeingScore(b)
	return nil
}

func (w WellbeingScore) MarshalJSON() ([]byte, error) {
	if v, ok := w.Int(); ok {
		return []byte(strconv.Itoa(v)), nil
	}
	if w == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(w))
}
