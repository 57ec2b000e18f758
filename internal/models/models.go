package models

import (
	"time"
)

// Option is one named configuration value, the sqlite stand-in for the
// wp_options rows the plugin used. Values are stored as plain strings;
// typed accessors live in the store package.
type Option struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;comment:Option name, e.g. wpain_n8n_webhook"`
	Value     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Form submission lifecycle statuses.
const (
	SubmissionStatusSent   = "sent"
	SubmissionStatusFailed = "failed"
)

// FormSubmission is an audit record of one contact-form relay to N8N.
type FormSubmission struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"comment:Visitor name as typed"`
	Email     string    `gorm:"index"`
	Whatsapp  string    `gorm:"index;comment:Canonical phone number"`
	SessionID string    `gorm:"index;comment:Messaging identity used as session key"`
	Status    string    `gorm:"index;comment:sent or failed"`
	Error     string    `gorm:"type:text;comment:Relay error message, if any"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
