package prescription

import (
	"context"
	"io"
	"time"
)

// FileStorage is the blob store holding uploaded prescription files.
// Content-type and size validation happen before this boundary.
type FileStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// DefaultURLExpiry is how long a presigned review link stays valid
const DefaultURLExpiry = 5 * time.Minute
