package models

import "time"

type Issue struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	TitleID     string    `gorm:"type:varchar(36);index;not null" bson:"title_id" json:"titleId"`
	Description string    `gorm:"type:text;not null" bson:"description" json:"description"`
	CreatedBy   string    `gorm:"type:varchar(36);not null" bson:"created_by" json:"createdBy"`
	Creator     *User     `gorm:"foreignKey:CreatedBy;references:ID" bson:"-" json:"creator,omitempty"`
	CreatedAt   time.Time `gorm:"not null" bson:"created_at" json:"createdAt"`
}
