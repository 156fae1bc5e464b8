package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
)

// DefaultRooms are created by SeedRooms when missing.
var DefaultRooms = []models.Room{
	{Number: "101", Type: "Standard", Status: models.RoomStatusAvailable},
	{Number: "102", Type: "Deluxe", Status: models.RoomStatusAvailable},
	{Number: "201", Type: "Suite", Status: models.RoomStatusAvailable},
	{Number: models.OtherRoomNumber, Type: models.OtherRoomType, Status: models.RoomStatusAvailable},
}

// SeedUser creates the user, or resets the password and role of an existing
// one. It reports whether a new user was created.
func SeedUser(ctx context.Context, store database.Store, username, password, role string) (bool, error) {
	if username == "" || password == "" {
		return false, errors.New("username and password are required")
	}
	if !models.ValidRole(role) {
		return false, fmt.Errorf("invalid role %q", role)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}

	existing, err := store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if err := store.UpdateUserPassword(ctx, existing.ID, hashed); err != nil {
			return false, err
		}
		if err := store.UpdateUserRole(ctx, existing.ID, role); err != nil {
			return false, err
		}
		utils.InfoLogger.Printf("User %s updated (role=%s)", username, role)
		return false, nil
	case !errors.Is(err, database.ErrNotFound):
		return false, err
	}

	user := &models.User{Username: username, Password: hashed, Role: role}
	if err := store.CreateUser(ctx, user); err != nil {
		return false, err
	}
	utils.InfoLogger.Printf("User %s created (role=%s)", username, role)
	return true, nil
}

// SeedRooms creates every DefaultRooms entry whose number is not taken yet
// and returns how many were created.
func SeedRooms(ctx context.Context, store database.Store) (int, error) {
	created := 0
	for _, tmpl := range DefaultRooms {
		_, err := store.GetRoomByNumber(ctx, tmpl.Number)
		if err == nil {
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return created, err
		}

		room := tmpl
		room.Floor = models.FloorOf(room.Number)
		if err := store.CreateRoom(ctx, &room); err != nil {
			return created, fmt.Errorf("seed room %s: %w", room.Number, err)
		}
		created++
		utils.InfoLogger.Printf("Room %s (%s) created", room.Number, room.Type)
	}
	return created, nil
}
