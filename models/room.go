package models

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"

	// OtherRoomType marks the single catch-all room used for facilities that
	// are not guest rooms (lobby, pool, kitchen...). Its number is always
	// OtherRoomNumber.
	OtherRoomType   = "Other"
	OtherRoomNumber = "OTHER"
)

var ErrInvalidRoomNumber = errors.New("Room number must be 3 digits")

var roomNumberPattern = regexp.MustCompile(`^\d{3}$`)

type Room struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Number    string    `gorm:"type:varchar(10);uniqueIndex;not null" bson:"number" json:"number"`
	Type      string    `gorm:"type:varchar(50);not null" bson:"type" json:"type"`
	Status    string    `gorm:"type:varchar(20);not null;default:'available'" bson:"status" json:"status"`
	Floor     int       `gorm:"not null;default:0" bson:"floor" json:"floor"`
	CreatedAt time.Time `gorm:"not null" bson:"created_at" json:"createdAt"`
}

// IsOtherType reports whether roomType designates the catch-all room.
func IsOtherType(roomType string) bool {
	return strings.EqualFold(strings.TrimSpace(roomType), OtherRoomType)
}

// NormalizeRoomNumber returns the number a room of the given type is stored
// under. The catch-all room is forced to OtherRoomNumber; every other room
// needs exactly three digits.
func NormalizeRoomNumber(number, roomType string) (string, error) {
	if IsOtherType(roomType) {
		return OtherRoomNumber, nil
	}
	number = strings.TrimSpace(number)
	if !roomNumberPattern.MatchString(number) {
		return "", ErrInvalidRoomNumber
	}
	return number, nil
}

// FloorOf derives the floor from a room number (integer division by 100).
// Non-numeric numbers, the catch-all room included, land on floor 0, the
// ground floor bucket.
func FloorOf(number string) int {
	n, err := strconv.Atoi(number)
	if err != nil || n < 0 {
		return 0
	}
	return n / 100
}

func ValidRoomStatus(status string) bool {
	switch status {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusMaintenance:
		return true
	}
	return false
}
