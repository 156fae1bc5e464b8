package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection       = "users"
	RoomsCollection       = "rooms"
	IssueTitlesCollection = "issue_titles"
	IssuesCollection      = "issues"
	LogsCollection        = "logs"

	DefaultMongoDatabase     = "hotel_management"
	DefaultConnectionTimeout = 20 * time.Second
)

type MongoConfig struct {
	URI               string
	Database          string
	ConnectionTimeout time.Duration
}

func NewMongoClient(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongodb config is required")
	}
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	timeout := cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = DefaultConnectionTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, timeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	utils.InfoLogger.Printf("Connected to MongoDB database: %s", cfg.Database)
	return client, nil
}

// MongoStore keeps every collection in MongoDB. MongoDB only offers
// multi-document transactions on replica sets, so cascades run as a saga:
// children first, parent last, stopping at the first failure.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (s *MongoStore) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	utils.InfoLogger.Println("Disconnected from MongoDB")
	return nil
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translateMongo(err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) updateByID(ctx context.Context, collection, id string, set bson.M) error {
	res, err := s.coll(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) deleteByID(ctx context.Context, collection, id string) error {
	res, err := s.coll(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------- users

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	prepare(&user.ID, &user.CreatedAt)
	_, err := s.coll(UsersCollection).InsertOne(ctx, user)
	return translateMongo(err)
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll(UsersCollection), bson.M{"_id": id})
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll(UsersCollection), bson.M{"username": username})
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	return findAll[models.User](ctx, s.coll(UsersCollection), bson.M{}, opts)
}

func (s *MongoStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return findAll[models.User](ctx, s.coll(UsersCollection), bson.M{"_id": bson.M{"$in": ids}})
}

func (s *MongoStore) FindUserIDs(ctx context.Context, part string) ([]string, error) {
	filter := bson.M{"username": primitive.Regex{Pattern: regexp.QuoteMeta(part), Options: "i"}}
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	users, err := findAll[models.User](ctx, s.coll(UsersCollection), filter, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (s *MongoStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return s.updateByID(ctx, UsersCollection, id, bson.M{"password": passwordHash})
}

func (s *MongoStore) UpdateUserRole(ctx context.Context, id, role string) error {
	return s.updateByID(ctx, UsersCollection, id, bson.M{"role": role})
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, UsersCollection, id)
}

// ---------------------------------------------------------------- rooms

func (s *MongoStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	return findAll[models.Room](ctx, s.coll(RoomsCollection), bson.M{}, opts)
}

func (s *MongoStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return findOne[models.Room](ctx, s.coll(RoomsCollection), bson.M{"_id": id})
}

func (s *MongoStore) GetRoomByNumber(ctx context.Context, number string) (*models.Room, error) {
	return findOne[models.Room](ctx, s.coll(RoomsCollection), bson.M{"number": number})
}

func (s *MongoStore) CreateRoom(ctx context.Context, room *models.Room) error {
	prepare(&room.ID, &room.CreatedAt)
	_, err := s.coll(RoomsCollection).InsertOne(ctx, room)
	return translateMongo(err)
}

func (s *MongoStore) UpdateRoom(ctx context.Context, room *models.Room) error {
	return s.updateByID(ctx, RoomsCollection, room.ID, bson.M{
		"number": room.Number,
		"type":   room.Type,
		"status": room.Status,
		"floor":  room.Floor,
	})
}

func (s *MongoStore) DeleteRoom(ctx context.Context, id string) error {
	if _, err := s.GetRoom(ctx, id); err != nil {
		return err
	}

	titleIDs, err := s.coll(IssueTitlesCollection).Distinct(ctx, "_id", bson.M{"room_id": id})
	if err != nil {
		return fmt.Errorf("list categories of room %s: %w", id, err)
	}
	if len(titleIDs) > 0 {
		if _, err := s.coll(IssuesCollection).DeleteMany(ctx, bson.M{"title_id": bson.M{"$in": titleIDs}}); err != nil {
			return fmt.Errorf("delete issues of room %s: %w", id, err)
		}
	}
	if _, err := s.coll(IssueTitlesCollection).DeleteMany(ctx, bson.M{"room_id": id}); err != nil {
		return fmt.Errorf("delete categories of room %s: %w", id, err)
	}
	return s.deleteByID(ctx, RoomsCollection, id)
}

// ---------------------------------------------------------------- titles

func (s *MongoStore) ListTitles(ctx context.Context, roomID string) ([]models.IssueTitle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	titles, err := findAll[models.IssueTitle](ctx, s.coll(IssueTitlesCollection), bson.M{"room_id": roomID}, opts)
	if err != nil || len(titles) == 0 {
		return titles, err
	}

	titleIDs := make([]string, 0, len(titles))
	for _, t := range titles {
		titleIDs = append(titleIDs, t.ID)
	}
	issueOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	issues, err := findAll[models.Issue](ctx, s.coll(IssuesCollection), bson.M{"title_id": bson.M{"$in": titleIDs}}, issueOpts)
	if err != nil {
		return nil, err
	}

	creatorIDs := make([]string, 0, len(titles)+len(issues))
	for _, t := range titles {
		creatorIDs = append(creatorIDs, t.CreatedBy)
	}
	for _, is := range issues {
		creatorIDs = append(creatorIDs, is.CreatedBy)
	}
	creators, err := s.usersByID(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string][]models.Issue, len(titles))
	for _, is := range issues {
		is.Creator = creators[is.CreatedBy]
		byTitle[is.TitleID] = append(byTitle[is.TitleID], is)
	}
	for i := range titles {
		titles[i].Creator = creators[titles[i].CreatedBy]
		titles[i].Issues = byTitle[titles[i].ID]
		if titles[i].Issues == nil {
			titles[i].Issues = []models.Issue{}
		}
	}
	return titles, nil
}

func (s *MongoStore) usersByID(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := s.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (s *MongoStore) GetTitle(ctx context.Context, id string) (*models.IssueTitle, error) {
	title, err := findOne[models.IssueTitle](ctx, s.coll(IssueTitlesCollection), bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	creators, err := s.usersByID(ctx, []string{title.CreatedBy})
	if err != nil {
		return nil, err
	}
	title.Creator = creators[title.CreatedBy]
	return title, nil
}

func (s *MongoStore) CreateTitle(ctx context.Context, title *models.IssueTitle) error {
	prepare(&title.ID, &title.CreatedAt)
	_, err := s.coll(IssueTitlesCollection).InsertOne(ctx, title)
	return translateMongo(err)
}

func (s *MongoStore) UpdateTitle(ctx context.Context, title *models.IssueTitle) error {
	return s.updateByID(ctx, IssueTitlesCollection, title.ID, bson.M{"title": title.Title})
}

func (s *MongoStore) DeleteTitle(ctx context.Context, id string) error {
	if _, err := findOne[models.IssueTitle](ctx, s.coll(IssueTitlesCollection), bson.M{"_id": id}); err != nil {
		return err
	}
	if _, err := s.coll(IssuesCollection).DeleteMany(ctx, bson.M{"title_id": id}); err != nil {
		return fmt.Errorf("delete issues of category %s: %w", id, err)
	}
	return s.deleteByID(ctx, IssueTitlesCollection, id)
}

// ---------------------------------------------------------------- issues

func (s *MongoStore) ListIssues(ctx context.Context, titleID string) ([]models.Issue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	issues, err := findAll[models.Issue](ctx, s.coll(IssuesCollection), bson.M{"title_id": titleID}, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(issues))
	for _, is := range issues {
		ids = append(ids, is.CreatedBy)
	}
	creators, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range issues {
		issues[i].Creator = creators[issues[i].CreatedBy]
	}
	return issues, nil
}

func (s *MongoStore) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	return findOne[models.Issue](ctx, s.coll(IssuesCollection), bson.M{"_id": id})
}

func (s *MongoStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	prepare(&issue.ID, &issue.CreatedAt)
	_, err := s.coll(IssuesCollection).InsertOne(ctx, issue)
	return translateMongo(err)
}

func (s *MongoStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	return s.updateByID(ctx, IssuesCollection, issue.ID, bson.M{"description": issue.Description})
}

func (s *MongoStore) DeleteIssue(ctx context.Context, id string) error {
	return s.deleteByID(ctx, IssuesCollection, id)
}

// ---------------------------------------------------------------- logs

func (s *MongoStore) CreateLog(ctx context.Context, entry *models.Log) error {
	prepare(&entry.ID, &entry.CreatedAt)
	_, err := s.coll(LogsCollection).InsertOne(ctx, entry)
	return err
}

func (s *MongoStore) ListLogs(ctx context.Context, filter LogFilter) ([]models.Log, error) {
	if filter.UserIDs != nil && len(filter.UserIDs) == 0 {
		return []models.Log{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[models.Log](ctx, s.coll(LogsCollection), logFilterDocument(filter), opts)
}

func logFilterDocument(filter LogFilter) bson.M {
	doc := bson.M{}
	if filter.Action != "" {
		doc["action"] = filter.Action
	}
	if filter.UserIDs != nil {
		doc["user_id"] = bson.M{"$in": filter.UserIDs}
	}
	if filter.From != nil || filter.To != nil {
		window := bson.M{}
		if filter.From != nil {
			window["$gte"] = filter.From.UTC()
		}
		if filter.To != nil {
			window["$lte"] = filter.To.UTC()
		}
		doc["created_at"] = window
	}
	return doc
}
