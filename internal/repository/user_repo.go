package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-commerce-api/internal/database"
	"go-commerce-api/internal/model"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{col: db.Accounts()}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.Account, error) {
	var a model.Account
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by id: %w", err)
	}
	return a, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	err := r.col.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by email: %w", err)
	}
	return a, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"email": normalizeEmail(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, a model.Account) error {
	a.Email = normalizeEmail(a.Email)
	_, err := r.col.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, upd model.UpdateProfileRequest) (model.Account, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.FirstName != nil {
		set["first_name"] = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		set["last_name"] = strings.TrimSpace(*upd.LastName)
	}
	if upd.Phone != nil {
		set["phone"] = strings.TrimSpace(*upd.Phone)
	}
	if upd.DateOfBirth != nil {
		set["date_of_birth"] = *upd.DateOfBirth
	}
	if upd.Gender != nil {
		set["gender"] = *upd.Gender
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}

	var a model.Account
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("update profile: %w", err)
	}
	return a, nil
}

func (r *UserRepository) UpdateAddresses(ctx context.Context, id string, addresses []model.Address) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"addresses": addresses, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("update addresses: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

// RecordFailedLogin applies one failed attempt as a single-document pipeline
// update, so concurrent wrong-password requests each land their increment
// and the lock engages exactly at the threshold. The lock is only (re)armed
// when no unexpired lock is present, which preserves the original window
// under a hammering client.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, error) {
	now := time.Now().UTC()

	pipeline := bson.A{
		bson.M{"$set": bson.M{
			"failed_login_attempts": bson.M{"$add": bson.A{
				bson.M{"$ifNull": bson.A{"$failed_login_attempts", 0}}, 1,
			}},
			"updated_at": now,
		}},
		bson.M{"$set": bson.M{
			"locked_until": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$gte": bson.A{"$failed_login_attempts", threshold}},
					bson.M{"$or": bson.A{
						bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$locked_until", nil}}, nil}},
						bson.M{"$lte": bson.A{"$locked_until", now}},
					}},
				}},
				lockUntil,
				"$locked_until",
			}},
		}},
	}

	var a model.Account
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, model.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("record failed login: %w", err)
	}
	return a.FailedLoginAttempts, nil
}

func (r *UserRepository) RecordSuccessfulLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"failed_login_attempts": 0, "last_login": at, "updated_at": at},
			"$unset": bson.M{"locked_until": ""},
		})
	if err != nil {
		return fmt.Errorf("record successful login: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, q model.AccountQuery) ([]model.Account, int64, error) {
	filter := bson.M{}
	if q.Role != "" {
		filter["role"] = q.Role
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Search != "" {
		pattern := bson.M{"$regex": q.Search, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"first_name": pattern},
			bson.M{"last_name": pattern},
			bson.M{"email": pattern},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := make([]model.Account, 0, limit)
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, 0, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, total, nil
}

// UpdateRoleStatus applies the admin-only mutations. A nil field is left
// untouched.
func (r *UserRepository) UpdateRoleStatus(ctx context.Context, id string, role *string, status *string) (model.Account, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if role != nil {
		set["role"] = *role
	}
	if status != nil {
		set["status"] = *status
	}

	var a model.Account
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("update role/status: %w", err)
	}
	return a, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
