// Package mongo implements the interface for MongoDB.
package mongo

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tarancss/educertify/lib/store"
)

// Database and collection names.
const (
	database   = "educertify"
	collection = "actions"
)

// Mongo implements a connection to a MongoDB database.
type Mongo struct {
	c *mgo.Client
}

// MongoAction implements a store action to MongoDB.
type MongoAction struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Address  string             `json:"address" bson:"address"`
	Function string             `json:"function" bson:"function"`
	Hash     string             `json:"hash,omitempty" bson:"hash,omitempty"`
	OK       bool               `json:"ok" bson:"ok"`
	Message  string             `json:"message,omitempty" bson:"message,omitempty"`
	TS       int64              `json:"ts" bson:"ts"`
}

// Action converts a MongoAction to store.Action type.
func (a MongoAction) Action() store.Action {
	return store.Action{
		ID:       a.ID[:],
		Address:  a.Address,
		Function: a.Function,
		Hash:     a.Hash,
		OK:       a.OK,
		Message:  a.Message,
		TS:       a.TS,
	}
}

// New returns a Mongo client connection to the specified MongoDB database uri.
func New(uri string) (*Mongo, error) {
	// get a client
	c, err := mgo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo DB in %s: %w", uri, err)
	}
	// connect client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd // 5 seconds timeout
	defer cancel()

	err = c.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	return &Mongo{c: c}, nil
}

// CloseMongo will close a database connection. Must be called at termination time.
func (m *Mongo) CloseMongo() error {
	return m.c.Disconnect(context.Background())
}

// AddAction saves an action and returns its id.
func (m *Mongo) AddAction(a store.Action) ([]byte, error) {
	col := m.c.Database(database).Collection(collection)

	res, err := col.InsertOne(context.Background(), MongoAction{
		Address:  a.Address,
		Function: a.Function,
		Hash:     a.Hash,
		OK:       a.OK,
		Message:  a.Message,
		TS:       a.TS,
	})
	if err != nil {
		return nil, fmt.Errorf("could not insert action in db: %w", err)
	}

	return hex.DecodeString(res.InsertedID.(primitive.ObjectID).Hex())
}

// GetActions returns the actions of the given wallet address, oldest first. An empty address returns all actions.
func (m *Mongo) GetActions(address string) ([]store.Action, error) {
	filter := bson.M{}
	if address != "" {
		filter = bson.M{"address": address}
	}

	docs, err := m.c.Database(database).Collection(collection).Find(context.Background(), filter,
		options.Find().SetSort(bson.D{{Key: "ts", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error getting mongo DB object: %w", err)
	}
	defer docs.Close(context.Background())

	actions := []store.Action{}

	for docs.Next(context.Background()) {
		var a MongoAction
		if err = docs.Decode(&a); err == nil {
			actions = append(actions, a.Action())
		}
	}

	return actions, docs.Err()
}

// DeleteActions deletes all the actions of the given wallet address.
func (m *Mongo) DeleteActions(address string) (err error) {
	_, err = m.c.Database(database).Collection(collection).DeleteMany(context.Background(), bson.M{"address": address})

	return
}
