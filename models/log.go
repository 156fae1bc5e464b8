package models

import "time"

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	TargetRoom     = "room"
	TargetCategory = "category"
	TargetIssue    = "issue"
	TargetUser     = "user"
)

// Log is one append-only audit entry. Target, TargetID and RoomID are
// optional; user management entries carry no room.
type Log struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Action    string    `gorm:"type:varchar(10);not null;index" bson:"action" json:"action"`
	Target    string    `gorm:"type:varchar(20)" bson:"target,omitempty" json:"target,omitempty"`
	TargetID  string    `gorm:"type:varchar(36)" bson:"target_id,omitempty" json:"targetId,omitempty"`
	RoomID    string    `gorm:"type:varchar(36);index" bson:"room_id,omitempty" json:"roomId,omitempty"`
	UserID    string    `gorm:"type:varchar(36);not null;index" bson:"user_id" json:"userId"`
	Details   string    `gorm:"type:text;not null" bson:"details" json:"details"`
	CreatedAt time.Time `gorm:"not null;index" bson:"created_at" json:"timestamp"`
}

func ValidAction(action string) bool {
	switch action {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Event names the entry for live subscribers, e.g. "room_create".
func (l Log) Event() string {
	if l.Target == "" {
		return l.Action
	}
	return l.Target + "_" + l.Action
}
