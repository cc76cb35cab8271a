package reminderRepo

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

// MongoReminderRepo implements ReminderRepository using MongoDB.
type MongoReminderRepo struct {
	coll *mongo.Collection
}

type reminderDocument struct {
	ID          string     `bson:"id"`
	BillID      string     `bson:"billId"`
	UserID      string     `bson:"userId"`
	FireAt      time.Time  `bson:"fireAt"`
	DaysBefore  int        `bson:"daysBefore"`
	Message     string     `bson:"message"`
	Channel     string     `bson:"channel"`
	Status      string     `bson:"status"`
	SentAt      *time.Time `bson:"sentAt,omitempty"`
	DeliveryKey string     `bson:"deliveryKey"`
	CreatedAt   time.Time  `bson:"createdAt"`
}

// NewMongoReminderRepo creates a ReminderRepository backed by the reminders collection.
func NewMongoReminderRepo(db *mongo.Database) ReminderRepository {
	repo := &MongoReminderRepo{coll: db.Collection("reminders")}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("reminderRepo: failed to create indexes: %v", err)
	}
	return repo
}

func (r *MongoReminderRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "fireAt", Value: 1}}},
		{Keys: bson.D{{Key: "billId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "fireAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func toDocument(m models.Reminder) reminderDocument {
	return reminderDocument{
		ID:          m.ID,
		BillID:      m.BillID,
		UserID:      m.UserID,
		FireAt:      m.FireAt,
		DaysBefore:  m.DaysBefore,
		Message:     m.Message,
		Channel:     string(m.Channel),
		Status:      string(m.Status),
		SentAt:      m.SentAt,
		DeliveryKey: m.DeliveryKey,
		CreatedAt:   m.CreatedAt,
	}
}

// Documents converts reminders into insertable documents.
func Documents(reminders []models.Reminder) []interface{} {
	docs := make([]interface{}, 0, len(reminders))
	for _, m := range reminders {
		docs = append(docs, toDocument(m))
	}
	return docs
}

func (d reminderDocument) toModel() models.Reminder {
	m := models.Reminder{
		ID:          d.ID,
		BillID:      d.BillID,
		UserID:      d.UserID,
		FireAt:      d.FireAt.UTC(),
		DaysBefore:  d.DaysBefore,
		Message:     d.Message,
		Channel:     models.Channel(d.Channel),
		Status:      models.ReminderStatus(d.Status),
		DeliveryKey: d.DeliveryKey,
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.SentAt != nil {
		t := d.SentAt.UTC()
		m.SentAt = &t
	}
	return m
}

// CreateMany inserts reminders in a single InsertMany call.
func (r *MongoReminderRepo) CreateMany(ctx context.Context, reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertMany(ctx, Documents(reminders)); err != nil {
		return fmt.Errorf("failed to insert reminders: %w", err)
	}
	return nil
}

// DeletePending removes the pending reminders of a bill.
func (r *MongoReminderRepo) DeletePending(ctx context.Context, billID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"billId": billID, "status": string(models.ReminderPending)})
	if err != nil {
		return 0, fmt.Errorf("failed to delete pending reminders of bill %s: %w", billID, err)
	}
	return res.DeletedCount, nil
}

// ReplacePending deletes and inserts inside one transaction.
func (r *MongoReminderRepo) ReplacePending(ctx context.Context, billID string, fresh []models.Reminder) error {
	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := r.coll.DeleteMany(sc, bson.M{"billId": billID, "status": string(models.ReminderPending)}); err != nil {
			return fmt.Errorf("failed to delete pending reminders of bill %s: %w", billID, err)
		}
		if len(fresh) == 0 {
			return nil
		}
		if _, err := r.coll.InsertMany(sc, Documents(fresh)); err != nil {
			return fmt.Errorf("failed to insert reminders: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("reminder regeneration transaction failed: %w", err)
	}
	return nil
}

// ListDue returns pending reminders due at or before now.
func (r *MongoReminderRepo) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{"status": string(models.ReminderPending), "fireAt": bson.M{"$lte": now}}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "fireAt", Value: 1}}))
}

// SaveOutcomes writes every outcome with one BulkWrite. A reminder
// rescheduled since it was loaded carries a new delivery key and is skipped.
func (r *MongoReminderRepo) SaveOutcomes(ctx context.Context, reminders []models.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(reminders))
	for _, m := range reminders {
		set := bson.M{"status": string(m.Status), "sentAt": m.SentAt}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(outcomeFilter(m)).
			SetUpdate(bson.M{"$set": set}))
	}
	if _, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to persist reminder outcomes: %w", err)
	}
	return nil
}

func outcomeFilter(m models.Reminder) bson.M {
	return bson.M{"id": m.ID, "status": string(models.ReminderPending), "deliveryKey": m.DeliveryKey}
}

// GetByID retrieves a reminder owned by userID.
func (r *MongoReminderRepo) GetByID(ctx context.Context, userID, id string) (*models.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc reminderDocument
	err := r.coll.FindOne(ctx, bson.M{"id": id, "userId": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NotFound("reminder not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminder %s: %w", id, err)
	}
	m := doc.toModel()
	return &m, nil
}

// Reschedule updates the schedule fields of a reminder.
func (r *MongoReminderRepo) Reschedule(ctx context.Context, reminder *models.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"fireAt":      reminder.FireAt,
		"status":      string(reminder.Status),
		"sentAt":      reminder.SentAt,
		"deliveryKey": reminder.DeliveryKey,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": reminder.ID, "userId": reminder.UserID}, update)
	if err != nil {
		return fmt.Errorf("failed to reschedule reminder %s: %w", reminder.ID, err)
	}
	if res.MatchedCount == 0 {
		return utils.NotFound("reminder not found")
	}
	return nil
}

// Delete removes a reminder owned by userID.
func (r *MongoReminderRepo) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return utils.NotFound("reminder not found")
	}
	return nil
}

// List returns a filtered page of reminders, newest first.
func (r *MongoReminderRepo) List(ctx context.Context, filter models.ReminderFilter) ([]models.Reminder, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{"userId": filter.UserID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.BillID != "" {
		query["billId"] = filter.BillID
	}
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reminders: %w", err)
	}

	sortKey := "fireAt"
	if filter.OrderBySentAt {
		sortKey = "sentAt"
	}
	page := filter.Page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: sortKey, Value: -1}, {Key: "id", Value: 1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))

	reminders, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return reminders, int(total), nil
}

// ListByBill returns every reminder of a bill.
func (r *MongoReminderRepo) ListByBill(ctx context.Context, billID string) ([]models.Reminder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.find(ctx, bson.M{"billId": billID}, options.Find().SetSort(bson.D{{Key: "fireAt", Value: 1}}))
}

func (r *MongoReminderRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Reminder, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reminderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	out := make([]models.Reminder, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}
