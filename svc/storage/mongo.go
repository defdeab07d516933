package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/accountkit/pkg/auth"
)

// DefaultAccountsCollection is the collection MongoStore uses unless told otherwise.
const DefaultAccountsCollection = "accounts"

// MongoStore persists accounts in MongoDB.
type MongoStore struct {
	coll *mongo.Collection
}

var _ auth.AccountStorage = (*MongoStore)(nil)

// MongoOption configures a MongoStore.
type MongoOption func(*mongoOptions)

type mongoOptions struct {
	collection string
}

// WithCollection overrides the accounts collection name.
func WithCollection(name string) MongoOption {
	return func(o *mongoOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

// NewMongoStore returns a store backed by db and ensures its indexes exist.
func NewMongoStore(ctx context.Context, db *mongo.Database, opts ...MongoOption) (*MongoStore, error) {
	o := mongoOptions{collection: DefaultAccountsCollection}
	for _, opt := range opts {
		opt(&o)
	}

	s := &MongoStore{coll: db.Collection(o.collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "visibility", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("visibility_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateAccount(ctx context.Context, account *auth.Account) error {
	if _, err := s.coll.InsertOne(ctx, toDocument(account)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *MongoStore) GetAccountByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (s *MongoStore) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*auth.Account, error) {
	var doc accountDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return doc.toAccount()
}

func (s *MongoStore) UpdateAccount(ctx context.Context, account *auth.Account) error {
	doc := toDocument(account)
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrAccountNotFound
	}
	return nil
}

func (s *MongoStore) ListAccounts(ctx context.Context, filter auth.AccountFilter) ([]*auth.Account, error) {
	query := bson.D{}
	if filter.Visibility != "" {
		query = append(query, bson.E{Key: "visibility", Value: string(filter.Visibility)})
	}
	if filter.Role != "" {
		query = append(query, bson.E{Key: "role", Value: string(filter.Role)})
	}

	cur, err := s.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var docs []accountDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}

	out := make([]*auth.Account, 0, len(docs))
	for _, d := range docs {
		a, err := d.toAccount()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
