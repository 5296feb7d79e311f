package adapter

import (
	"context"
	"io"
)

// FileStorage is the port for hosted object storage. Payment proofs are
// uploaded here and referenced by their public URL in activation codes.
type FileStorage interface {
	// UploadProof stores a proof document under the user's folder and
	// returns a stable public URL.
	UploadProof(ctx context.Context, userID, filename string, r io.Reader) (string, error)
}
