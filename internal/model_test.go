package internal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWellbeingScore_AcceptsNumberAndString(t *testing.T) {
	var recs []SleepRecord
	body := `[{"login":"a","wellbeing":7},{"login":"b","wellbeing":"8"},{"login":"c","wellbeing":null},{"login":"d"}]`
	require.NoError(t, json.Unmarshal([]byte(body), &recs))
	require.Len(t, recs, 4)

	v, ok := recs[0].Wellbeing.Int()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	v, ok = recs[1].Wellbeing.Int()
	assert.True(t, ok)
	assert.Equal(t, 8, v)

	_, ok = recs[2].Wellbeing.Int()
	assert.False(t, ok)
	_, ok = recs[3].Wellbeing.Int()
	assert.False(t, ok)
}

func TestWellbeingScore_Marshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A WellbeingScore `json:"a"`
		B WellbeingScore `json:"b"`
		C WellbeingScore `json:"c"`
	}{A: ScoreOf(6), B: "great", C: ""})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":6,"b":"great","c":null}`, string(b))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	var u *User
	assert.False(t, u.IsAdmin())
}
