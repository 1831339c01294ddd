package models

import "gorm.io/gorm"

// CarTags is the fixed set of free-form labels attached to a listing.
type CarTags struct {
	CarType string `json:"car_type"`
	Company string `json:"company"`
	Dealer  string `json:"dealer"`
}

// Car represents a single car listing owned by a user.
type Car struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"required,max=2000"`
	Images      []string `json:"images" gorm:"serializer:json" validate:"required,min=1,max=10"`
	Tags        CarTags  `json:"tags" gorm:"embedded;embeddedPrefix:tag_"`
	UserID      string   `json:"user_id" gorm:"index;type:varchar(36)" validate:"required"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
