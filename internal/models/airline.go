package models

import (
	"errors"
	"strings"
	"time"
)

type DetailItem struct {
	Heading     string `json:"heading"`
	Description string `json:"description"`
}

type Airline struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	ShortName       string       `gorm:"uniqueIndex;not null" json:"shortName"`
	LogoPicture     string       `gorm:"not null" json:"logoPicture"`
	MonogramPicture string       `gorm:"not null" json:"monogramPicture"`
	Details         []DetailItem `gorm:"type:text;serializer:json" json:"details"`
	Overview        string       `gorm:"type:text;not null" json:"overview"`
	Baggage         bool         `gorm:"not null;default:false" json:"baggage"`
	BaggageArray    []DetailItem `gorm:"type:text;serializer:json" json:"baggageArray"`
	CreatedAt       time.Time    `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

func (a *Airline) Validate() error {
	a.ShortName = strings.TrimSpace(a.ShortName)
	switch {
	case a.ShortName == "":
		return errors.New("shortName is required")
	case a.LogoPicture == "" || a.MonogramPicture == "":
		return errors.New("logoPicture and monogramPicture are required")
	case strings.TrimSpace(a.Overview) == "":
		return errors.New("overview is required")
	case len(a.Details) == 0:
		return errors.New("details must have at least one item")
	case a.Baggage && len(a.BaggageArray) == 0:
		return errors.New("baggageArray must have at least one item when baggage=true")
	}
	for _, items := range [][]DetailItem{a.Details, a.BaggageArray} {
		for _, d := range items {
			if d.Heading == "" || d.Description == "" {
				return errors.New("detail items need a heading and a description")
			}
		}
	}
	return nil
}
