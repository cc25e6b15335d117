package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

const (
	collectionAccounts = "accounts"
	collectionCounters = "counters"
)

// AccountRepository stores accounts with integer ids drawn from a counters
// document, so ids look the same as on the SQL backends.
type AccountRepository struct {
	db       *mongo.Database
	col      *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		db:       db,
		col:      db.Collection(collectionAccounts),
		counters: db.Collection(collectionCounters),
		now:      time.Now,
	}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

type accountDoc struct {
	ID             int64     `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	EmailKey       string    `bson:"email_key"`
	CredentialHash string    `bson:"credential_hash"`
	Role           string    `bson:"role"`
	CreatedAt      time.Time `bson:"created_at"`
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		CredentialHash: d.CredentialHash,
		Role:           domain.Role(d.Role),
		CreatedAt:      d.CreatedAt.UTC(),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EnsureIndexes creates the unique email index and the listing index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var d accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return d.toDomain(), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email_key": emailKey(email)})
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) List(ctx context.Context, f ports.ListAccountsFilter) ([]*domain.Account, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = string(f.Role)
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Account, 0)
	for cur.Next(ctx) {
		var d accountDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		out = append(out, d.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// nextID atomically bumps the accounts sequence. A duplicate insert burns an
// id; gaps are fine.
func (r *AccountRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	bump := func() error {
		return r.counters.FindOneAndUpdate(ctx,
			bson.M{"_id": collectionAccounts},
			bson.M{"$inc": bson.M{"seq": int64(1)}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&counter)
	}

	err := bump()
	// Two first-ever upserts can race on the counter's _id; the loser retries
	// against the now existing document.
	if mongo.IsDuplicateKeyError(err) {
		err = bump()
	}
	if err != nil {
		return 0, fmt.Errorf("next account id: %w", err)
	}
	return counter.Seq, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := accountDoc{
		ID:             id,
		Name:           a.Name,
		Email:          a.Email,
		EmailKey:       emailKey(a.Email),
		CredentialHash: a.CredentialHash,
		Role:           string(a.Role),
		CreatedAt:      r.now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) Update(ctx context.Context, id int64, p domain.AccountPatch) (*domain.Account, error) {
	if p.Empty() {
		return r.FindByID(ctx, id)
	}

	set := bson.M{}
	if v, ok := p.Name.Get(); ok {
		set["name"] = v
	}
	if v, ok := p.Email.Get(); ok {
		set["email"] = v
		set["email_key"] = emailKey(v)
	}
	if v, ok := p.Role.Get(); ok {
		set["role"] = string(v)
	}
	if v, ok := p.CredentialHash.Get(); ok {
		set["credential_hash"] = v
	}
	var d accountDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return d.toDomain(), nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
