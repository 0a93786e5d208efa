package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abhicism/dailyplanner/internal/core/domain"
)

const collectionDayEntries = "day_entries"

type DayEntryRepository struct {
	col *mongo.Collection
	ids sequence
	now func() time.Time
}

func NewDayEntryRepository(db *mongo.Database) *DayEntryRepository {
	return &DayEntryRepository{
		col: db.Collection(collectionDayEntries),
		ids: newSequence(db, collectionDayEntries),
		now: time.Now,
	}
}

type dayEntryDocument struct {
	ID        int64     `bson:"_id"`
	UserID    int64     `bson:"user_id"`
	DateKey   string    `bson:"date_key"`
	Payload   string    `bson:"payload"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Upsert overwrites an existing entry in place or inserts a new one. A
// concurrent insert for the same (user_id, date_key) loses on the unique
// index and falls back to the update.
func (r *DayEntryRepository) Upsert(ctx context.Context, userID int64, dateKey, payload string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now().UTC().Truncate(time.Millisecond)

	updated, err := r.update(ctx, userID, dateKey, payload, now)
	if err != nil || updated {
		return err
	}

	id, err := r.ids.next(ctx)
	if err != nil {
		return err
	}
	doc := dayEntryDocument{
		ID:        id,
		UserID:    userID,
		DateKey:   dateKey,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.col.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert day entry: %w", err)
	}

	updated, err = r.update(ctx, userID, dateKey, payload, now)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("upsert day entry: entry for %q vanished during write", dateKey)
	}
	return nil
}

func (r *DayEntryRepository) update(ctx context.Context, userID int64, dateKey, payload string, now time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": userID, "date_key": dateKey},
		bson.M{"$set": bson.M{"payload": payload, "updated_at": now}},
	)
	if err != nil {
		return false, fmt.Errorf("update day entry: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *DayEntryRepository) Get(ctx context.Context, userID int64, dateKey string) (*domain.DayEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc dayEntryDocument
	err := r.col.FindOne(ctx, bson.M{"user_id": userID, "date_key": dateKey}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDayEntryNotFound
		}
		return nil, fmt.Errorf("find day entry: %w", err)
	}
	entry := doc.toDomain()
	return &entry, nil
}

// ListByUser returns the user's entries in creation order (ascending _id).
func (r *DayEntryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.DayEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list day entries: %w", err)
	}

	var docs []dayEntryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode day entries: %w", err)
	}

	entries := make([]domain.DayEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d.toDomain())
	}
	return entries, nil
}

// EnsureIndexes creates the unique (user_id, date_key) index.
func (r *DayEntryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date_key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_date_key_unique"),
	})
	return err
}

func (d dayEntryDocument) toDomain() domain.DayEntry {
	return domain.DayEntry{
		ID:        d.ID,
		UserID:    d.UserID,
		DateKey:   d.DateKey,
		Payload:   d.Payload,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
