package repository

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	QuestionsCollection    = "questions"
	UsersCollection        = "users"
	TestSessionsCollection = "testsessions"
	AuthHistoryCollection  = "userauthhistories"
	UserSessionsCollection = "usersessions"
)

// parseObjectID treats a malformed id the same as a missing document.
func parseObjectID(id, resource string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(resource)
	}
	return oid, nil
}

// translate maps driver errors onto application errors.
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperror.NotFound(resource)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s already exists: %w", resource, apperror.ErrConflict)
	}
	return err
}

func pageOptions(p models.Page, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if p.Limit > 0 {
		opts.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
	}
	return opts
}

// caseInsensitive builds a regex that matches s literally, ignoring case.
func caseInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// roundHalfUp rounds a non-negative value to a whole number with halves going
// up, unlike $round which rounds halves to even.
func roundHalfUp(expr interface{}) bson.M {
	return bson.M{"$floor": bson.M{"$add": bson.A{expr, 0.5}}}
}

// roundScaled rounds a non-negative value to 1/scale, halves up.
func roundScaled(expr interface{}, scale int) bson.M {
	return bson.M{"$divide": bson.A{roundHalfUp(bson.M{"$multiply": bson.A{expr, scale}}), scale}}
}

func round1(expr interface{}) bson.M { return roundScaled(expr, 10) }

func round2(expr interface{}) bson.M { return roundScaled(expr, 100) }

// percentOf is round(numerator/denominator*100, 2), or 0 for a zero denominator.
func percentOf(numerator, denominator string) bson.M {
	return bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{denominator, 0}},
		0,
		round2(bson.M{"$multiply": bson.A{bson.M{"$divide": bson.A{numerator, denominator}}, 100}}),
	}}
}

func dayOf(field string) bson.M {
	return bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": field}}
}

func sinceFilter(field string, since *time.Time) bson.M {
	if since == nil {
		return bson.M{}
	}
	return bson.M{field: bson.M{"$gte": *since}}
}

func objectIDOf(inserted interface{}, fallback primitive.ObjectID) primitive.ObjectID {
	if oid, ok := inserted.(primitive.ObjectID); ok {
		return oid
	}
	return fallback
}
