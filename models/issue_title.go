package models

import "time"

// IssueTitle is a category of issues inside one room (e.g. "Plumbing").
type IssueTitle struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	RoomID    string    `gorm:"type:varchar(36);index;not null" bson:"room_id" json:"roomId"`
	Title     string    `gorm:"type:varchar(255);not null" bson:"title" json:"title"`
	CreatedBy string    `gorm:"type:varchar(36);not null" bson:"created_by" json:"createdBy"`
	Creator   *User     `gorm:"foreignKey:CreatedBy;references:ID" bson:"-" json:"creator,omitempty"`
	CreatedAt time.Time `gorm:"not null" bson:"created_at" json:"createdAt"`
	Issues    []Issue   `gorm:"foreignKey:TitleID;references:ID" bson:"-" json:"issues"`
}
