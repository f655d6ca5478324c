package profile

import (
	"time"

	"github.com/2beens/betterlife/internal/apperrors"
	"github.com/2beens/betterlife/internal/days"
)

const minBirthYear = 1920

type BirthDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (b BirthDate) Date() days.Date {
	return days.Date{Year: b.Year, Month: time.Month(b.Month), Day: b.Day}
}

func (b BirthDate) Validate(today days.Date) error {
	if b.Year < minBirthYear || b.Year > today.Year {
		return apperrors.Validationf("birth year must be between %d and %d", minBirthYear, today.Year)
	}
	if b.Month < 1 || b.Month > 12 {
		return apperrors.Validationf("invalid birth month: %d", b.Month)
	}
	if b.Day < 1 || b.Day > 31 {
		return apperrors.Validationf("invalid birth day: %d", b.Day)
	}
	// catches 31st of april and friends
	if days.New(b.Year, time.Month(b.Month), b.Day) != b.Date() {
		return apperrors.Validationf("invalid birth date: %d-%02d-%02d", b.Year, b.Month, b.Day)
	}
	if b.Date().After(today) {
		return apperrors.Validationf("birth date in the future")
	}
	return nil
}

type Physique struct {
	HeightCm           float64 `json:"height"`
	WeightKg           float64 `json:"weight"`
	BasalMetabolicRate float64 `json:"metabolicRate"`
}

func (p Physique) Validate() error {
	if p.HeightCm < 100 || p.HeightCm > 250 {
		return apperrors.Validationf("height must be between 100 and 250 cm")
	}
	if p.WeightKg < 30 || p.WeightKg > 300 {
		return apperrors.Validationf("weight must be between 30 and 300 kg")
	}
	if p.BasalMetabolicRate < 800 || p.BasalMetabolicRate > 4000 {
		return apperrors.Validationf("metabolic rate must be between 800 and 4000 kcal")
	}
	return nil
}

type Name struct {
	FirstName  string `json:"firstName"`
	SecondName string `json:"secondName"`
	LastName   string `json:"lastName"`
}

// Profile is what is known about a user. Parts never filled in are nil.
type Profile struct {
	UserID    string     `json:"userId"`
	BirthDate *BirthDate `json:"birthDate,omitempty"`
	Physique  *Physique  `json:"physique,omitempty"`
	Name      *Name      `json:"name,omitempty"`
}

// WeightKg is 0 until the physique is filled in.
func (p *Profile) WeightKg() float64 {
	if p.Physique == nil {
		return 0
	}
	return p.Physique.WeightKg
}

// Update carries the parts of a profile to overwrite; nil parts are left as they are.
type Update struct {
	BirthDate *BirthDate `json:"birthDate,omitempty"`
	Physique  *Physique  `json:"physique,omitempty"`
	Name      *Name      `json:"name,omitempty"`
}

func (u Update) Validate(today days.Date) error {
	if u.BirthDate == nil && u.Physique == nil && u.Name == nil {
		return apperrors.Validationf("nothing to update")
	}
	if u.BirthDate != nil {
		if err := u.BirthDate.Validate(today); err != nil {
			return err
		}
	}
	if u.Physique != nil {
		if err := u.Physique.Validate(); err != nil {
			return err
		}
	}
	return nil
}
