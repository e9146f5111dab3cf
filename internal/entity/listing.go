package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HousingType string

const (
	HousingApartment HousingType = "apartment"
	HousingRoom      HousingType = "room"
	HousingStudio    HousingType = "studio"
	HousingHouse     HousingType = "house"
	HousingDormitory HousingType = "dormitory"
)

var HousingTypes = []HousingType{HousingApartment, HousingRoom, HousingStudio, HousingHouse, HousingDormitory}

func (t HousingType) Valid() bool {
	for _, v := range HousingTypes {
		if v == t {
			return true
		}
	}
	return false
}

type HousingStatus string

const (
	HousingAvailable HousingStatus = "available"
	HousingRented    HousingStatus = "rented"
	HousingInactive  HousingStatus = "inactive"
)

func (s HousingStatus) Valid() bool {
	return s == HousingAvailable || s == HousingRented || s == HousingInactive
}

type Housing struct {
	ID            uuid.UUID     `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID       uuid.UUID     `gorm:"type:char(36);not null;index" json:"owner_id"`
	Owner         *Owner        `gorm:"constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Title         string        `gorm:"size:200;not null" json:"title"`
	Description   string        `gorm:"type:text" json:"description"`
	Type          HousingType   `gorm:"size:20;not null;index" json:"type"`
	Price         float64       `gorm:"not null;index" json:"price"`
	City          string        `gorm:"size:100;not null;index" json:"city"`
	Address       string        `gorm:"size:255" json:"address"`
	Bedrooms      int           `gorm:"not null;default:1" json:"bedrooms"`
	Bathrooms     int           `gorm:"not null;default:1" json:"bathrooms"`
	Furnished     bool          `gorm:"not null;default:false" json:"furnished"`
	AvailableFrom *time.Time    `json:"available_from,omitempty"`
	Status        HousingStatus `gorm:"size:20;not null;default:available;index" json:"status"`
	Views         int           `gorm:"not null;default:0" json:"views"`
	Images        []Image       `gorm:"foreignKey:HousingID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (h *Housing) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID, err = uuid.NewV7()
	}
	return
}

type ItemCondition string

const (
	ConditionNew     ItemCondition = "new"
	ConditionLikeNew ItemCondition = "like_new"
	ConditionGood    ItemCondition = "good"
	ConditionFair    ItemCondition = "fair"
	ConditionPoor    ItemCondition = "poor"
)

var ItemConditions = []ItemCondition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}

func (c ItemCondition) Valid() bool {
	for _, v := range ItemConditions {
		if v == c {
			return true
		}
	}
	return false
}

type Item struct {
	ID          uuid.UUID     `gorm:"type:char(36);primaryKey" json:"id"`
	StudentID   uuid.UUID     `gorm:"type:char(36);not null;index" json:"student_id"`
	Student     *Student      `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Title       string        `gorm:"size:200;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Category    string        `gorm:"size:100;not null;index" json:"category"`
	Condition   ItemCondition `gorm:"size:20;not null" json:"condition"`
	Price       float64       `gorm:"not null;index" json:"price"`
	Location    *string       `gorm:"size:150" json:"location,omitempty"`
	IsSold      bool          `gorm:"not null;default:false;index" json:"is_sold"`
	SoldAt      *time.Time    `json:"sold_at,omitempty"`
	Views       int           `gorm:"not null;default:0" json:"views"`
	Images      []Image       `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}

type ItemCategory struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *ItemCategory) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// Image is uploaded on its own first and later attached to at most one listing.
type Image struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UploaderID   uuid.UUID  `gorm:"type:char(36);not null;index" json:"-"`
	UploaderRole string     `gorm:"size:20;not null" json:"-"`
	HousingID    *uuid.UUID `gorm:"type:char(36);index" json:"-"`
	ItemID       *uuid.UUID `gorm:"type:char(36);index" json:"-"`
	FileURL      string     `gorm:"type:text;not null" json:"url"`
	ContentType  string     `gorm:"size:50;not null" json:"content_type"`
	Size         int64      `gorm:"not null" json:"size"`
	SortOrder    int        `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}

// ImageURLs returns up to limit image URLs in display order; limit <= 0 returns all.
func ImageURLs(images []Image, limit int) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		if limit > 0 && len(urls) >= limit {
			break
		}
		urls = append(urls, img.FileURL)
	}
	return urls
}
