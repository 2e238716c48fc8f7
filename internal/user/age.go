// AngelaMos | 2026
// age.go

package user

import (
	"errors"
	"time"
)

type AgeGroup string

const (
	AgeGroupMiddle AgeGroup = "MIDDLE"
	AgeGroupHigh   AgeGroup = "HIGH"
	AgeGroupPro    AgeGroup = "PRO"
)

const (
	MinAge = 14
	MaxAge = 100
)

var ErrAgeOutOfRange = errors.New("age out of range")

// AgeAt returns full years between birth and at, calendar-correct:
// the year difference is decremented until the birthday has passed.
func AgeAt(birth, at time.Time) int {
	age := at.Year() - birth.Year()

	monthDiff := int(at.Month()) - int(birth.Month())
	if monthDiff < 0 || (monthDiff == 0 && at.Day() < birth.Day()) {
		age--
	}

	return age
}

func CalculateAge(birth time.Time) int {
	return AgeAt(birth, time.Now())
}

// AgeGroupFromAge maps an age to its assessment bracket. Ages below
// the minimum have no bracket and are rejected at registration.
func AgeGroupFromAge(age int) (AgeGroup, bool) {
	switch {
	case age >= 14 && age <= 18:
		return AgeGroupMiddle, true
	case age >= 19 && age <= 25:
		return AgeGroupHigh, true
	case age >= 26:
		return AgeGroupPro, true
	default:
		return "", false
	}
}

func ValidateBirthDate(birth time.Time) error {
	age := CalculateAge(birth)
	if age < MinAge || age > MaxAge {
		return ErrAgeOutOfRange
	}
	return nil
}
