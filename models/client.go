package models

import "time"

type Client struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	DocumentType   string `gorm:"size:20;not null" json:"document_type"` // CC, NIT, CE, ...
	DocumentNumber string `gorm:"uniqueIndex;size:40;not null" json:"document_number"`
	FullName       string `gorm:"size:180;not null;index" json:"full_name"`
	Phone          string `gorm:"size:60" json:"phone"`
	Email          string `gorm:"size:180" json:"email"`
	Address        string `gorm:"size:255" json:"address"`
	IsActive       bool   `gorm:"not null;default:true" json:"is_active"`

	Vehicles []Vehicle `json:"vehicles,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Vehicle struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `json:"client,omitempty"`

	Plate   string `gorm:"uniqueIndex;size:20;not null" json:"plate"`
	Brand   string `gorm:"size:80;not null" json:"brand"`
	Model   string `gorm:"size:80;not null" json:"model"`
	Year    *int   `json:"year"`
	Color   string `gorm:"size:40" json:"color"`
	Mileage *int   `json:"mileage"`
	Notes   string `gorm:"size:255" json:"notes,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
