package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/redundancy-gate/gateway/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNewMinIOStorage_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{})
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	require.ErrorIs(t, classify(notFound), ErrObjectNotFound)

	other := errors.New("connection refused")
	require.Equal(t, other, classify(other))
}
