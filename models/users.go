package models

import "time"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" bson:"username" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" bson:"password" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" bson:"role" json:"role"`
	CreatedAt time.Time `gorm:"not null" bson:"created_at" json:"createdAt"`
}

// ValidRole reports whether role is one of the roles a user can hold.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}
