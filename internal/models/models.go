package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "user"
)

// IssueType selects the loan policy applied to an issue.
type IssueType string

const (
	IssueTypeIndividual IssueType = "individual"
	IssueTypeGroup      IssueType = "group"
)

// DamageType classifies the physical condition of a returned book.
type DamageType string

const (
	DamageTypeNone  DamageType = "none"
	DamageTypeSmall DamageType = "small"
	DamageTypeLarge DamageType = "large"
)

// Valid reports whether d is one of the enumerated damage classes.
func (d DamageType) Valid() bool {
	switch d {
	case DamageTypeNone, DamageTypeSmall, DamageTypeLarge:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"type:user_role;not null;default:'user'" json:"role"`
}

type Book struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Author            string    `gorm:"size:255;not null" json:"author"`
	Category          string    `gorm:"size:100;not null" json:"category"`
	Cost              float64   `gorm:"not null" json:"cost"`
	TotalQuantity     int       `gorm:"not null" json:"total_quantity"`
	AvailableQuantity int       `gorm:"not null" json:"available_quantity"`
}

// Issue is a single lending transaction. An issue with Returned=false is the
// user's active loan; the partial unique index on UserID guarantees at most one
// such row per user even under concurrent issue requests.
//
// BookID intentionally carries no foreign-key association: the catalog may
// delete a book whose historical issues remain, and a return against a dangling
// book reference must still succeed (see CirculationService.ReturnBook). Cost is
// denormalized onto the issue at creation time for exactly that case.
type Issue struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;index:idx_issues_one_active_per_user,unique,where:returned = false" json:"user_id"`
	User       User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	BookID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"book_id"`
	IssueType  IssueType  `gorm:"type:issue_type;not null" json:"issue_type"`
	GroupSize  int        `gorm:"not null;default:0" json:"group_size,omitempty"`
	IssueDate  time.Time  `gorm:"not null" json:"issue_date"`
	DueDate    time.Time  `gorm:"not null" json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	Returned   bool       `gorm:"not null;default:false;index" json:"returned"`
	Fine       float64    `gorm:"not null;default:0" json:"fine"`
	LateDays   int        `gorm:"not null;default:0" json:"late_days"`
	DamageType DamageType `gorm:"type:damage_type;not null;default:'none'" json:"damage_type"`
	BookCost   float64    `gorm:"not null" json:"-"`
}

type Review struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookID      uuid.UUID `gorm:"type:uuid;not null;index" json:"book_id"`
	Book        Book      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Rating      int       `gorm:"not null" json:"rating"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}
