package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubStorage_UploadAndPresign(t *testing.T) {
	stub := NewStubStorage()
	ctx := context.Background()

	err := stub.Upload(ctx, "prescriptions/abc.jpg", strings.NewReader("image-bytes"), "image/jpeg")
	require.NoError(t, err)

	data, ok := stub.File("prescriptions/abc.jpg")
	require.True(t, ok)
	assert.Equal(t, "image-bytes", string(data))

	url, err := stub.PresignedURL(ctx, "prescriptions/abc.jpg", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "prescriptions/abc.jpg")
}

func TestStubStorage_PresignUnknownKey(t *testing.T) {
	stub := NewStubStorage()
	_, err := stub.PresignedURL(context.Background(), "prescriptions/missing.jpg", 5*time.Minute)
	assert.Error(t, err)
}

func TestStubStorage_EmptyKey(t *testing.T) {
	stub := NewStubStorage()
	assert.Error(t, stub.Upload(context.Background(), "", strings.NewReader("x"), "image/jpeg"))
	_, err := stub.PresignedURL(context.Background(), "", time.Minute)
	assert.Error(t, err)
}
