package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SlideBanner  = "banner"
	SlideProduct = "product"
)

// Promotional content units share two conventions: a manual sort_order field
// the admin console rearranges, and an active flag used as a soft hide.

type HeroSlide struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title              string         `gorm:"not null"                 json:"title"`
	Subtitle           string         `json:"subtitle,omitempty"`
	Description        string         `json:"description,omitempty"`
	Type               string         `gorm:"not null;default:banner" json:"type"`
	ProductID          *uint          `json:"product_id,omitempty"`
	ImageURL           string         `json:"image_url,omitempty"`
	BackgroundGradient string         `json:"background_gradient,omitempty"`
	PromoText          string         `json:"promo_text,omitempty"`
	ButtonText         string         `json:"button_text,omitempty"`
	ButtonLink         string         `json:"button_link,omitempty"`
	CountdownEnabled   bool           `gorm:"default:false" json:"countdown_enabled"`
	CountdownEndDate   *time.Time     `json:"countdown_end_date,omitempty"`
	SortOrder          int            `gorm:"column:sort_order;default:0" json:"order"`
	Active             bool           `gorm:"default:true;index"          json:"active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type PopularCategory struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Icon      string    `json:"icon"`
	SortOrder int       `gorm:"column:sort_order;default:0" json:"order"`
	Active    bool      `gorm:"default:true;index"          json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type ActualOffer struct {
	ID              uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string         `gorm:"not null"                 json:"title"`
	Subtitle        string         `json:"subtitle,omitempty"`
	Description     string         `json:"description,omitempty"`
	ImageURL        string         `gorm:"not null" json:"image_url"`
	BannerImageURL  string         `json:"banner_image_url,omitempty"`
	LinkURL         string         `json:"link_url"`
	ProductIDs      datatypes.JSON `json:"product_ids"`
	BackgroundColor string         `json:"background_color"`
	TextColor       string         `json:"text_color"`
	Position        int            `gorm:"default:0" json:"position"`
	SortOrder       int            `gorm:"column:sort_order;default:0" json:"order"`
	Active          bool           `gorm:"default:true;index"          json:"active"`
	CreatedAt       time.Time      `json:"created_at"`
}

type Promotion struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title            string     `gorm:"not null"                 json:"title"`
	Description      string     `json:"description,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	DiscountText     string     `json:"discount_text,omitempty"`
	BadgeColor       string     `json:"badge_color,omitempty"`
	LinkURL          string     `json:"link_url,omitempty"`
	CountdownEnabled bool       `gorm:"default:false" json:"countdown_enabled"`
	CountdownEndDate *time.Time `json:"countdown_end_date,omitempty"`
	SortOrder        int        `gorm:"column:sort_order;default:0" json:"order"`
	Active           bool       `gorm:"default:true;index"          json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
}
