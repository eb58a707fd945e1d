package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB locations.
const (
	DefaultMongoDatabase   = "tokenfolio"
	DefaultMongoCollection = "state"
)

// MongoStore keeps one document per profile, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	id     string
}

type mongoDoc struct {
	ID    string `bson:"_id"`
	State State  `bson:"state"`
}

// MongoConfig locates the state collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Profile    string
}

// NewMongoStore connects and pings the server. Close disconnects.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		id:     cfg.Profile,
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) (*State, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", s.id, err)
	}
	return &doc.State, nil
}

func (s *MongoStore) Save(ctx context.Context, st *State) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": s.id},
		mongoDoc{ID: s.id, State: *st},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save state %s: %w", s.id, err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
