// Package evidence is the bridge to the storage collaborator holding claim
// evidence images. Clients never touch the bucket directly; they get
// short-lived presigned URLs, and the stored opaque key is what a claim
// carries in evidence_urls.
package evidence

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/akunmarket/platform/claims-service/internal/models"
	"github.com/akunmarket/platform/claims-service/internal/validate"
)

const (
	uploadTTL      = 15 * time.Minute
	DefaultViewTTL = 1 * time.Hour
)

// UploadGrant is handed to the client so it can PUT the evidence file itself.
type UploadGrant struct {
	Key         string            `json:"key"`
	URL         string            `json:"url"`
	ExpiresIn   int               `json:"expires_in"`
	ContentType string            `json:"content_type"`
	Headers     map[string]string `json:"headers"`
}

type Store struct {
	presigner *s3.PresignClient
	bucket    string
}

func NewStore(client *s3.Client, bucket string) *Store {
	return &Store{presigner: s3.NewPresignClient(client), bucket: bucket}
}

// BuildKey constructs the object key for a new evidence file, scoped to its
// owner.
func BuildKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("evidence/%s/%s%s", userID, uuid.NewString(), ext)
}

// OwnerOf extracts the owning user from an evidence key.
func OwnerOf(key string) (userID string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "evidence" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// PresignUpload validates the declared file and returns a presigned PUT URL.
// The declared size is bounded here; the bucket policy backs it up.
func (s *Store) PresignUpload(ctx context.Context, userID, filename, contentType string, size int64) (*UploadGrant, error) {
	if err := validate.EvidenceUpload(filename, contentType, size); err != nil {
		return nil, err
	}

	key := BuildKey(userID, filename)
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		Metadata:      map[string]string{"user_id": userID},
	}, func(o *s3.PresignOptions) { o.Expires = uploadTTL })
	if err != nil {
		return nil, fmt.Errorf("presign evidence upload: %w", err)
	}

	return &UploadGrant{
		Key:         key,
		URL:         req.URL,
		ExpiresIn:   int(uploadTTL.Seconds()),
		ContentType: contentType,
		Headers: map[string]string{
			"Content-Type": contentType,
		},
	}, nil
}

// PresignView resolves a stored evidence key into a short-lived view URL.
// requesterID must own the key unless the requester is an admin.
func (s *Store) PresignView(ctx context.Context, key, requesterID string, admin bool, ttl time.Duration) (string, error) {
	owner, ok := OwnerOf(key)
	if !ok {
		return "", fmt.Errorf("%w: malformed evidence key", models.ErrValidation)
	}
	if !admin && owner != requesterID {
		return "", models.ErrNotFound
	}
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) { o.Expires = ttl })
	if err != nil {
		return "", fmt.Errorf("presign evidence view: %w", err)
	}
	return req.URL, nil
}
