package models

import "time"

// DropoffLocation is a named point offered to riders as a destination.
type DropoffLocation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Address   string    `json:"address" gorm:"not null"`
	Latitude  float64   `json:"latitude" gorm:"not null"`
	Longitude float64   `json:"longitude" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultDropoffLocations is used by the seed command.
func DefaultDropoffLocations() []DropoffLocation {
	return []DropoffLocation{
		{Name: "Main Train Station", Address: "123 Railway Rd, City Center", Latitude: 12.3456, Longitude: 98.7654},
		{Name: "Airport Terminal", Address: "456 Airport Blvd, Airport Zone", Latitude: 12.3789, Longitude: 98.7321},
		{Name: "Central Bus Station", Address: "789 Transit St, Downtown", Latitude: 12.3123, Longitude: 98.7456},
	}
}
