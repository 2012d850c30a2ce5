package domain

import (
	"fmt"
	"strings"
)

// HotelRecord is one catalog entry. Treat it as immutable once an engine has been built from it.
type HotelRecord struct {
	ID         string   `json:"id"`
	NameLocal  string   `json:"nameLocal"`
	NameAlt    string   `json:"nameAlt"`
	NameThird  string   `json:"nameThird,omitempty"`
	CityLocal  string   `json:"cityLocal"`
	CityAlt    string   `json:"cityAlt"`
	Region     string   `json:"region"`
	Address    string   `json:"address"`
	Country    string   `json:"country"`
	Popularity int64    `json:"popularity"`
	PriceTier  string   `json:"priceTier,omitempty"`
	StarRating int      `json:"starRating,omitempty"` // 1..5, 0 = unknown
	Lat        *float64 `json:"latitude,omitempty"`
	Lon        *float64 `json:"longitude,omitempty"`
}

// PrimaryName is the local name, or the alternate one when the local name is missing.
func (h HotelRecord) PrimaryName() string {
	if strings.TrimSpace(h.NameLocal) != "" {
		return h.NameLocal
	}
	return h.NameAlt
}

// CityName is the local city name, falling back to the alternate one.
func (h HotelRecord) CityName() string {
	if strings.TrimSpace(h.CityLocal) != "" {
		return h.CityLocal
	}
	return h.CityAlt
}

func (h HotelRecord) HasCoords() bool { return h.Lat != nil && h.Lon != nil }

// Validate checks the invariants the ranking code relies on.
func (h HotelRecord) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if strings.TrimSpace(h.PrimaryName()) == "" {
		return fmt.Errorf("%w: hotel %s has no name", ErrInvalidRecord, h.ID)
	}
	if h.Popularity < 0 {
		return fmt.Errorf("%w: hotel %s has negative popularity %d", ErrInvalidRecord, h.ID, h.Popularity)
	}
	if h.StarRating < 0 || h.StarRating > 5 {
		return fmt.Errorf("%w: hotel %s has star rating %d", ErrInvalidRecord, h.ID, h.StarRating)
	}
	return nil
}
