package database

import (
	"context"

	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the relational schema.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.IssueTitle{},
		&models.Issue{},
		&models.Log{},
	)
	if err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// EnsureIndexes creates the unique and lookup indexes the Mongo store relies
// on. Unique indexes back ErrDuplicate for usernames and room numbers.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		RoomsCollection: {
			{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		IssueTitlesCollection: {
			{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		IssuesCollection: {
			{Keys: bson.D{{Key: "title_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		LogsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, specs := range indexes {
		names, err := s.coll(name).Indexes().CreateMany(ctx, specs)
		if err != nil {
			utils.ErrorLogger.Errorf("Error creating indexes on %s: %v", name, err)
			return err
		}
		for _, idx := range names {
			utils.InfoLogger.Printf("Index verified: %s on %s", idx, name)
		}
	}
	return nil
}
