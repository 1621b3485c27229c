package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/legacyvault/admin-trust/internal/core/domain"
)

const auditCollection = "audit_entries"

// AuditRepository is the durable, append-only audit store. Entries are
// inserted once and never updated or deleted through this type.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// Append inserts one entry. The ULID _id doubles as the insertion-order
// sort key.
func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Query returns entries matching all supplied filters, newest first, plus
// the total match count before pagination.
func (r *AuditRepository) Query(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	query := bson.M{}
	if filter.ActorID != "" {
		query["actor_id"] = filter.ActorID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.TargetID != "" {
		query["target_id"] = filter.TargetID
	}
	if filter.Outcome != "" {
		query["outcome"] = filter.Outcome
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		ts := bson.M{}
		if !filter.From.IsZero() {
			ts["$gte"] = filter.From
		}
		if !filter.To.IsZero() {
			ts["$lte"] = filter.To
		}
		query["timestamp"] = ts
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(filter.Offset).
		SetLimit(filter.Limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []domain.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, fmt.Errorf("decode audit entries: %w", err)
	}
	return entries, total, nil
}
