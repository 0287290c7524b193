package models

import "time"

// Message is internal staff messaging. A message can optionally point at
// the alert, request or invoice being discussed.
type Message struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SenderID    uint  `gorm:"index;not null" json:"sender_id"`
	Sender      *User `json:"sender,omitempty"`
	RecipientID uint  `gorm:"index;not null" json:"recipient_id"`
	Recipient   *User `json:"recipient,omitempty"`

	Subject string `gorm:"size:180;not null" json:"subject"`
	Body    string `gorm:"size:2000;not null" json:"body"`

	AlertID   *uint `gorm:"index" json:"alert_id,omitempty"`
	RequestID *uint `gorm:"index" json:"request_id,omitempty"`
	InvoiceID *uint `gorm:"index" json:"invoice_id,omitempty"`

	IsRead bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
