package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMongoInsertError(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: redundancy.user_data index: content_1 dup key: { content: "hello" }`,
	}}}
	err := mongoInsertError(dup)
	require.ErrorIs(t, err, ErrDuplicateContent)
	require.Contains(t, err.Error(), "E11000")

	denied := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 13, Message: "not authorized"}}}
	require.NotErrorIs(t, mongoInsertError(denied), ErrDuplicateContent)

	plain := errors.New("server selection timeout")
	require.Equal(t, plain, mongoInsertError(plain))
}

func TestMongoRecord_ToRecord(t *testing.T) {
	oid := primitive.NewObjectID()
	r := mongoRecord{ID: oid, Content: "hello"}.toRecord()
	require.Equal(t, oid.Hex(), r.ID)
	require.Equal(t, "hello", r.Content)
}
