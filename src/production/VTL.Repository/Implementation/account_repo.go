package implementation

import (
	"context"
	"time"

	"github.com/google/uuid"
	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoAccountRepository struct {
	coll *mongo.Collection
}

func NewMongoAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{coll: db.Collection("accounts")}
}

// Create account
func (r *MongoAccountRepository) Create(ctx context.Context, account *vtlmodels.Account) (*vtlmodels.Account, error) {
	if account.AccountID == "" {
		account.AccountID = uuid.New().String()
	}
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt

	if _, err := r.coll.InsertOne(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Read accounts
func (r *MongoAccountRepository) GetByID(ctx context.Context, accountID string) (*vtlmodels.Account, error) {
	return r.findOne(ctx, bson.M{"account_id": accountID})
}

func (r *MongoAccountRepository) GetByEmail(ctx context.Context, email string) (*vtlmodels.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*vtlmodels.Account, error) {
	var account vtlmodels.Account
	err := r.coll.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Update account
func (r *MongoAccountRepository) Update(ctx context.Context, account *vtlmodels.Account) error {
	account.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"name":       account.Name,
		"password":   account.Password,
		"config":     account.Config,
		"updated_at": account.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"account_id": account.AccountID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
