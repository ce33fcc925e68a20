// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/bemyforce/bemyforce/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("achievements", achievementsSchema())
	ensure("needs", needsSchema())
	ensure("assets", assetsSchema())
	ensure("interests", interestsSchema())

	// Owned by the identity service; we only read it.
	ensure("users", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enumOf[T ~string](vals []T) bson.A {
	out := make(bson.A, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

// rejectedNeedsReason requires a rejection_reason whenever field holds
// "rejected".
func rejectedNeedsReason(field string, others bson.A) bson.A {
	return bson.A{
		bson.M{"properties": bson.M{field: bson.M{"enum": others}}},
		bson.M{
			"required":   bson.A{"rejection_reason"},
			"properties": bson.M{"rejection_reason": nonBlank},
		},
	}
}

func achievementsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user", "title", "description", "interests", "status"},
			"properties": bson.M{
				"user":        bson.M{"bsonType": "objectId"},
				"title":       bson.M{"bsonType": "string", "minLength": 1, "maxLength": 200, "pattern": ".*\\S.*"},
				"description": bson.M{"bsonType": "object"},
				"interests":   bson.M{"bsonType": "array", "minItems": 1, "items": bson.M{"bsonType": "objectId"}},
				"status":      bson.M{"enum": enumOf(models.AchievementStatuses)},
				"approved_at": bson.M{"bsonType": bson.A{"date", "null"}},
			},
			"anyOf": rejectedNeedsReason("status", bson.A{
				string(models.AchievementPending), string(models.AchievementApproved),
			}),
		},
	}
}

func needsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user", "title", "description", "interests", "event_date", "is_approved", "status"},
			"properties": bson.M{
				"user":         bson.M{"bsonType": "objectId"},
				"title":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 200, "pattern": ".*\\S.*"},
				"description":  nonBlank,
				"interests":    bson.M{"bsonType": "array", "minItems": 1, "items": bson.M{"bsonType": "objectId"}},
				"event_date":   bson.M{"bsonType": "date"},
				"is_approved":  bson.M{"enum": enumOf(models.ApprovalStatuses)},
				"status":       bson.M{"enum": enumOf(models.NeedStatuses)},
				"approved_at":  bson.M{"bsonType": bson.A{"date", "null"}},
				"fulfilled_at": bson.M{"bsonType": bson.A{"date", "null"}},
			},
			"anyOf": rejectedNeedsReason("is_approved", bson.A{
				string(models.ApprovalPending), string(models.ApprovalApproved),
			}),
		},
	}
}

func assetsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user", "url", "public_id", "asset_type", "related_model", "related_id"},
			"properties": bson.M{
				"user":          bson.M{"bsonType": "objectId"},
				"url":           nonBlank,
				"public_id":     nonBlank,
				"asset_type":    bson.M{"enum": bson.A{string(models.AssetImage), string(models.AssetVideo)}},
				"related_model": bson.M{"enum": enumOf(models.RelatedModels)},
				"related_id":    bson.M{"bsonType": "objectId"},
				"duration":      bson.M{"bsonType": "number", "minimum": 0},
				"size":          bson.M{"bsonType": "number", "minimum": 0},
			},
		},
	}
}

func interestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci"},
			"properties": bson.M{
				"name":    nonBlank,
				"name_ci": nonBlank,
			},
		},
	}
}
