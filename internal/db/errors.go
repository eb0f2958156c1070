package db

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	duplicateKeyCode       = 11000
	noQueryExecutionPlans  = 291
	indexNotFoundCode      = 27
	geoNearMissingIndexMsg = "unable to find index for $geoNear query"
)

// IsMongoDuplicateKeyError checks if an error from MongoDB is a duplicate key error (code 11000).
func IsMongoDuplicateKeyError(err error) bool {
	var e mongo.WriteException
	if errors.As(err, &e) {
		for _, we := range e.WriteErrors {
			if we.Code == duplicateKeyCode {
				return true
			}
		}
	}
	// Also check for BulkWriteException, which can contain duplicate key errors
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, writeError := range bwe.WriteErrors {
			if writeError.Code == duplicateKeyCode {
				return true
			}
		}
	}
	return false
}

// IsMongoGeoIndexError reports whether a $geoNear stage failed because the
// 2dsphere index is missing.
func IsMongoGeoIndexError(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if ce.Code == noQueryExecutionPlans || ce.Code == indexNotFoundCode {
			return true
		}
		return strings.Contains(ce.Message, geoNearMissingIndexMsg)
	}
	return false
}
