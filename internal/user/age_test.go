// AngelaMos | 2026
// age_test.go

package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeAt(t *testing.T) {
	birth := date(2000, time.June, 15)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"day before birthday", date(2020, time.June, 14), 19},
		{"on birthday", date(2020, time.June, 15), 20},
		{"day after birthday", date(2020, time.June, 16), 20},
		{"end of year", date(2020, time.December, 31), 20},
		{"start of year", date(2020, time.January, 1), 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeAt(birth, tt.at))
		})
	}
}

func TestAgeAt_LeapDay(t *testing.T) {
	birth := date(2004, time.February, 29)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"feb 28 non-leap year", date(2021, time.February, 28), 16},
		{"mar 1 non-leap year", date(2021, time.March, 1), 17},
		{"feb 29 leap year", date(2024, time.February, 29), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeAt(birth, tt.at))
		})
	}
}

func TestAgeGroupFromAge(t *testing.T) {
	tests := []struct {
		age   int
		want  AgeGroup
		valid bool
	}{
		{13, "", false},
		{14, AgeGroupMiddle, true},
		{18, AgeGroupMiddle, true},
		{19, AgeGroupHigh, true},
		{25, AgeGroupHigh, true},
		{26, AgeGroupPro, true},
		{60, AgeGroupPro, true},
		{101, AgeGroupPro, true},
	}

	for _, tt := range tests {
		group, ok := AgeGroupFromAge(tt.age)
		assert.Equal(t, tt.valid, ok, "age %d", tt.age)
		assert.Equal(t, tt.want, group, "age %d", tt.age)
	}
}

func TestValidateBirthDate(t *testing.T) {
	now := time.Now()

	err := ValidateBirthDate(now.AddDate(-20, 0, 0))
	require.NoError(t, err)

	err = ValidateBirthDate(now.AddDate(-10, 0, 0))
	assert.ErrorIs(t, err, ErrAgeOutOfRange)

	err = ValidateBirthDate(now.AddDate(-120, 0, 0))
	assert.ErrorIs(t, err, ErrAgeOutOfRange)
}

func TestUserAgeGroup(t *testing.T) {
	u := &User{BirthDate: time.Now().AddDate(-16, 0, 0)}
	assert.Equal(t, AgeGroupMiddle, u.AgeGroup())

	u.BirthDate = time.Now().AddDate(-22, 0, 0)
	assert.Equal(t, AgeGroupHigh, u.AgeGroup())

	u.BirthDate = time.Now().AddDate(-40, 0, 0)
	assert.Equal(t, AgeGroupPro, u.AgeGroup())
}
