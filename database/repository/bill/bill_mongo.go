package billRepo

import (
	"context"
	"fmt"
	"time"

	reminderRepo "emireminder/database/repository/reminder"
	"emireminder/models"
	"emireminder/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBillRepo implements BillRepository using MongoDB.
type MongoBillRepo struct {
	coll      *mongo.Collection
	reminders *mongo.Collection
}

type billDocument struct {
	ID          string               `bson:"id"`
	UserID      string               `bson:"userId"`
	Title       string               `bson:"title"`
	Category    string               `bson:"category"`
	Amount      primitive.Decimal128 `bson:"amount"`
	DueDate     time.Time            `bson:"dueDate"`
	Frequency   string               `bson:"frequency"`
	IsRecurring bool                 `bson:"isRecurring"`
	Status      string               `bson:"status"`
	Notes       string               `bson:"notes,omitempty"`
	Institution string               `bson:"institution,omitempty"`
	AccountInfo string               `bson:"accountInfo,omitempty"`
	Version     int                  `bson:"version"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

// NewMongoBillRepo creates a BillRepository backed by the bills collection.
func NewMongoBillRepo(db *mongo.Database) BillRepository {
	repo := &MongoBillRepo{
		coll:      db.Collection("bills"),
		reminders: db.Collection("reminders"),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Sugar().Warnf("billRepo: failed to create indexes: %v", err)
	}
	return repo
}

func (r *MongoBillRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "dueDate", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func toDocument(b *models.Bill) (billDocument, error) {
	amount, err := primitive.ParseDecimal128(b.Amount.String())
	if err != nil {
		return billDocument{}, fmt.Errorf("invalid amount %s: %w", b.Amount, err)
	}
	return billDocument{
		ID:          b.ID,
		UserID:      b.UserID,
		Title:       b.Title,
		Category:    b.Category,
		Amount:      amount,
		DueDate:     b.DueDate,
		Frequency:   string(b.Frequency),
		IsRecurring: b.IsRecurring,
		Status:      string(b.Status),
		Notes:       b.Notes,
		Institution: b.Institution,
		AccountInfo: b.AccountInfo,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}, nil
}

func (d billDocument) toModel() (models.Bill, error) {
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return models.Bill{}, fmt.Errorf("bill %s: bad amount %q: %w", d.ID, d.Amount.String(), err)
	}
	return models.Bill{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Category:    d.Category,
		Amount:      amount,
		DueDate:     d.DueDate.UTC(),
		Frequency:   models.Frequency(d.Frequency),
		IsRecurring: d.IsRecurring,
		Status:      models.BillStatus(d.Status),
		Notes:       d.Notes,
		Institution: d.Institution,
		AccountInfo: d.AccountInfo,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

// Create inserts a new bill document.
func (r *MongoBillRepo) Create(ctx context.Context, bill *models.Bill) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	bill.CreatedAt, bill.UpdatedAt = now, now
	bill.Version = 1

	doc, err := toDocument(bill)
	if err != nil {
		return utils.InvalidInput("%v", err)
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// GetByID retrieves a bill owned by userID.
func (r *MongoBillRepo) GetByID(ctx context.Context, userID, id string) (*models.Bill, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc billDocument
	err := r.coll.FindOne(ctx, bson.M{"id": id, "userId": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NotFound("bill not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bill %s: %w", id, err)
	}
	bill, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// Update replaces the bill when the stored version matches.
func (r *MongoBillRepo) Update(ctx context.Context, bill *models.Bill) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if err := r.replace(ctx, bill, now); err != nil {
		return err
	}
	bill.Version++
	bill.UpdatedAt = now
	return nil
}

// replace writes bill over the stored copy at bill.Version. bill itself is
// left untouched so a failed transaction needs no undo.
func (r *MongoBillRepo) replace(ctx context.Context, bill *models.Bill, now time.Time) error {
	doc, err := toDocument(bill)
	if err != nil {
		return utils.InvalidInput("%v", err)
	}
	doc.Version = bill.Version + 1
	doc.UpdatedAt = now

	filter := bson.M{"id": bill.ID, "userId": bill.UserID, "version": bill.Version}
	res, err := r.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("failed to update bill %s: %w", bill.ID, err)
	}
	if res.MatchedCount == 0 {
		return utils.Conflict("bill %s was modified concurrently", bill.ID)
	}
	return nil
}

// UpdateWithReminders replaces the bill and its pending reminders in one
// transaction.
func (r *MongoBillRepo) UpdateWithReminders(ctx context.Context, bill *models.Bill, fresh []models.Reminder) error {
	now := time.Now().UTC()
	err := r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := r.replace(sc, bill, now); err != nil {
			return err
		}
		return r.swapPending(sc, bill.ID, fresh)
	})
	if err != nil {
		return err
	}
	bill.Version++
	bill.UpdatedAt = now
	return nil
}

// Settle marks the bill paid, drops its pending reminders and inserts the
// successor with its reminders in one transaction.
func (r *MongoBillRepo) Settle(ctx context.Context, paid *models.Bill, next *models.Bill, nextReminders []models.Reminder) error {
	now := time.Now().UTC()
	var nextDoc billDocument
	if next != nil {
		if next.ID == "" {
			next.ID = uuid.NewString()
		}
		successor := *next
		successor.CreatedAt, successor.UpdatedAt = now, now
		successor.Version = 1
		var err error
		if nextDoc, err = toDocument(&successor); err != nil {
			return utils.InvalidInput("%v", err)
		}
	}

	err := r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := r.replace(sc, paid, now); err != nil {
			return err
		}
		if err := r.swapPending(sc, paid.ID, nil); err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if _, err := r.coll.InsertOne(sc, nextDoc); err != nil {
			return fmt.Errorf("failed to create bill: %w", err)
		}
		return r.swapPending(sc, next.ID, nextReminders)
	})
	if err != nil {
		return err
	}
	paid.Version++
	paid.UpdatedAt = now
	if next != nil {
		next.CreatedAt, next.UpdatedAt = now, now
		next.Version = 1
	}
	return nil
}

// swapPending deletes the pending reminders of billID and inserts fresh.
func (r *MongoBillRepo) swapPending(sc mongo.SessionContext, billID string, fresh []models.Reminder) error {
	if _, err := r.reminders.DeleteMany(sc, bson.M{"billId": billID, "status": string(models.ReminderPending)}); err != nil {
		return fmt.Errorf("failed to delete pending reminders of bill %s: %w", billID, err)
	}
	if len(fresh) == 0 {
		return nil
	}
	if _, err := r.reminders.InsertMany(sc, reminderRepo.Documents(fresh)); err != nil {
		return fmt.Errorf("failed to insert reminders: %w", err)
	}
	return nil
}

// Delete removes the bill and its reminders in one transaction.
func (r *MongoBillRepo) Delete(ctx context.Context, userID, id string) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := r.coll.DeleteOne(sc, bson.M{"id": id, "userId": userID})
		if err != nil {
			return fmt.Errorf("failed to delete bill %s: %w", id, err)
		}
		if res.DeletedCount == 0 {
			return utils.NotFound("bill not found")
		}
		if _, err := r.reminders.DeleteMany(sc, bson.M{"billId": id}); err != nil {
			return fmt.Errorf("failed to delete reminders of bill %s: %w", id, err)
		}
		return nil
	})
}

func (r *MongoBillRepo) inTransaction(ctx context.Context, txnFn func(sc mongo.SessionContext) error) error {
	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// listQuery translates filter into a selector. Status filters use the
// computed status, so overdue and due depend on filter.Today.
func listQuery(filter models.BillFilter) bson.M {
	query := bson.M{"userId": filter.UserID}
	switch filter.Status {
	case "":
	case string(models.ComputedOverdue):
		query["status"] = bson.M{"$ne": string(models.BillPaid)}
		query["dueDate"] = bson.M{"$lt": filter.Today}
	case string(models.ComputedDue):
		query["status"] = string(models.BillDue)
		query["dueDate"] = bson.M{"$gte": filter.Today}
	default:
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	return query
}

// List returns a filtered, sorted page of bills.
func (r *MongoBillRepo) List(ctx context.Context, filter models.BillFilter) ([]models.Bill, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := listQuery(filter)
	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	sortField := "dueDate"
	switch filter.Sort {
	case "amount", "title":
		sortField = filter.Sort
	}
	dir := 1
	if filter.Desc {
		dir = -1
	}
	page := filter.Page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: dir}, {Key: "id", Value: 1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Size))

	bills, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return bills, int(total), nil
}

// ListByUser returns all bills of a user.
func (r *MongoBillRepo) ListByUser(ctx context.Context, userID string) ([]models.Bill, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}))
}

// ListDueBetween returns bills due inside [from, to].
func (r *MongoBillRepo) ListDueBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Bill, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	query := bson.M{"userId": userID, "dueDate": bson.M{"$gte": from, "$lte": to}}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}))
}

func (r *MongoBillRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Bill, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []billDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bills: %w", err)
	}
	bills := make([]models.Bill, 0, len(docs))
	for _, d := range docs {
		b, err := d.toModel()
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, nil
}
