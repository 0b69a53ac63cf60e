package models

import "time"

type Vertical string

const (
	VerticalAccommodation Vertical = "accommodation"
	VerticalRentcar       Vertical = "rentcar"
	VerticalFood          Vertical = "food"
	VerticalEvents        Vertical = "events"
	VerticalAttractions   Vertical = "attractions"
	VerticalExperiences   Vertical = "experiences"
)

func (v Vertical) Valid() bool {
	switch v {
	case VerticalAccommodation, VerticalRentcar, VerticalFood,
		VerticalEvents, VerticalAttractions, VerticalExperiences:
		return true
	}
	return false
}

// Resource is any inventory unit that can be reserved for a time range:
// a lodging room type, a rental vehicle, an experience slot.
// Resources are deactivated, never deleted.
type Resource struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	PartnerID uint     `gorm:"not null;index" json:"partner_id"`
	Vertical  Vertical `gorm:"type:varchar(20);not null;index" json:"vertical"`
	Name      string   `gorm:"not null" json:"name"`
	IsActive  bool     `gorm:"not null;default:true" json:"is_active"`

	// MaxUnits is the number of concurrent units this resource can serve:
	// 1 for unique assets, N for pooled inventory (fleet, multi-unit room type).
	MaxUnits int `gorm:"not null;default:1" json:"max_units"`

	// BufferMinutes extends every existing reservation's end during conflict
	// checks (vehicle turnaround cleaning). Never applied to the candidate.
	BufferMinutes int `gorm:"not null;default:0" json:"buffer_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
