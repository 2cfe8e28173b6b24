package models

import (
	"time"
)

// Numeric role taxonomy. Role ids are the only role discriminator the
// services trust; string role names are display-only.
const (
	RoleBeneficiary uint = 1
	RoleVolunteer   uint = 2
	RoleModerator   uint = 3
)

// Role represents the roles table
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:30;uniqueIndex;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

// Client represents a calling channel (web frontend, telegram bot). Each
// channel authenticates with its own bcrypt-hashed secret, independent of
// the principal's credentials.
type Client struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	SecretHash string `gorm:"size:255;not null" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}

// Location represents the locations table. Rows are deduplicated by the
// (latitude, longitude, address_name) triple; the location repository is the
// only writer and reuses an existing row when the triple matches.
type Location struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Latitude    float64 `gorm:"not null;index:idx_locations_coords" json:"latitude"`
	Longitude   float64 `gorm:"not null;index:idx_locations_coords" json:"longitude"`
	AddressName string  `gorm:"size:500" json:"address_name"`
}

func (Location) TableName() string {
	return "locations"
}

// Category represents the categories table (shallow hierarchy via ParentID).
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	ParentID *uint  `gorm:"index" json:"parent_id"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

func (Category) TableName() string {
	return "categories"
}

// Customer represents a beneficiary or volunteer. Moderators live in their
// own table; the two partitions share the numeric role taxonomy.
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PhoneNum   string    `gorm:"size:20;not null;index" json:"phone_num"`
	TgID       string    `gorm:"size:20;not null;index" json:"tg_id"`
	Firstname  string    `gorm:"size:100;not null" json:"firstname"`
	Lastname   string    `gorm:"size:100" json:"lastname"`
	Patronymic string    `gorm:"size:100" json:"patronymic"`
	RoleID     uint      `gorm:"not null;index" json:"role_id"`
	ClientID   uint      `gorm:"not null" json:"client_id"`
	LocationID *uint     `gorm:"index" json:"location_id"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Location   *Location  `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Categories []Category `gorm:"many2many:customer_categories" json:"categories,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerResponse DTO
type CustomerResponse struct {
	ID         uint      `json:"id"`
	PhoneNum   string    `json:"phone_num"`
	TgID       string    `json:"tg_id"`
	Firstname  string    `json:"firstname"`
	Lastname   string    `json:"lastname,omitempty"`
	Patronymic string    `json:"patronymic,omitempty"`
	RoleID     uint      `json:"role_id"`
	LocationID *uint     `json:"location_id"`
	IsVerified bool      `json:"is_verified"`
	IsActive   bool      `json:"is_active"`
	Categories []uint    `json:"categories,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Customer) ToResponse() *CustomerResponse {
	resp := &CustomerResponse{
		ID:         c.ID,
		PhoneNum:   c.PhoneNum,
		TgID:       c.TgID,
		Firstname:  c.Firstname,
		Lastname:   c.Lastname,
		Patronymic: c.Patronymic,
		RoleID:     c.RoleID,
		LocationID: c.LocationID,
		IsVerified: c.IsVerified,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
	}
	for _, cat := range c.Categories {
		resp.Categories = append(resp.Categories, cat.ID)
	}
	return resp
}

// Moderator represents the moderators table.
type Moderator struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber  string    `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ClientID     uint      `gorm:"not null" json:"client_id"`
	RoleID       uint      `gorm:"not null" json:"role_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Moderator) TableName() string {
	return "moderators"
}

// Media represents an evidence file attached when closing an application.
// The file itself lives in external storage; only the path is recorded.
type Media struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filepath  string    `gorm:"size:500;not null" json:"filepath"`
	CreatorID uint      `gorm:"not null;index" json:"creator_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Media) TableName() string {
	return "media"
}

// RefreshToken represents the refresh_tokens table. Only the SHA-256 digest
// of the token is stored; rotation revokes the old row and inserts a new one.
type RefreshToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PrincipalID uint       `gorm:"index;not null" json:"principal_id"`
	RoleID      uint       `gorm:"not null" json:"role_id"`
	TokenHash   string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt   *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}
