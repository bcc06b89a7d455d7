package service

import (
	"fmt"

	producterrors "github.com/abgdnv/producthub/internal/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID parses a 24-character hex ObjectID token.
// Returns ErrInvalidIdentifier for anything else.
func ParseID(token string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(token)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", producterrors.ErrInvalidIdentifier, token)
	}
	return id, nil
}
