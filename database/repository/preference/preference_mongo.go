package preferenceRepo

import (
	"context"
	"fmt"
	"time"

	"emireminder/models"
	"emireminder/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPreferenceRepo implements PreferenceRepository using MongoDB.
type MongoPreferenceRepo struct {
	coll *mongo.Collection
}

type preferenceDocument struct {
	UserID          string    `bson:"userId"`
	PushEnabled     bool      `bson:"pushEnabled"`
	SMSEnabled      bool      `bson:"smsEnabled"`
	WhatsAppEnabled bool      `bson:"whatsAppEnabled"`
	ReminderDays    string    `bson:"reminderDays"`
	Language        string    `bson:"language"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

func NewMongoPreferenceRepo(db *mongo.Database) PreferenceRepository {
	repo := &MongoPreferenceRepo{coll: db.Collection("user_preferences")}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		utils.GetLogger().Sugar().Warnf("preferenceRepo: failed to create indexes: %v", err)
	}
	return repo
}

func (r *MongoPreferenceRepo) Get(ctx context.Context, userID string) (*models.UserPreference, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc preferenceDocument
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences of user %s: %w", userID, err)
	}
	pref := models.UserPreference(doc)
	pref.UpdatedAt = pref.UpdatedAt.UTC()
	return &pref, nil
}

func (r *MongoPreferenceRepo) Upsert(ctx context.Context, pref *models.UserPreference) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pref.UpdatedAt = time.Now().UTC()
	doc := preferenceDocument(*pref)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"userId": pref.UserID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save preferences of user %s: %w", pref.UserID, err)
	}
	return nil
}
