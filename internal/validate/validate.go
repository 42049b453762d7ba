// Package validate checks claim submissions and evidence uploads before any
// repository write happens.
package validate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akunmarket/platform/claims-service/internal/models"
)

const (
	MinReasonLen     = 10
	MaxReasonLen     = 500
	MaxEvidenceFiles = 3
	MaxEvidenceBytes = 5 << 20 // 5 MB
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Reason checks the free-text portion of a claim reason: 10..500 characters
// after trimming.
func Reason(detail string) error {
	trimmed := strings.TrimSpace(detail)
	if len(trimmed) < MinReasonLen {
		return fmt.Errorf("%w: reason must be at least %d characters", models.ErrValidation, MinReasonLen)
	}
	if len(trimmed) > MaxReasonLen {
		return fmt.Errorf("%w: reason must be at most %d characters", models.ErrValidation, MaxReasonLen)
	}
	return nil
}

// ClaimType checks the requested resolution classification.
func ClaimType(t models.ClaimType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown claim type %q", models.ErrValidation, t)
	}
	return nil
}

// EvidenceRefs checks the evidence references attached to a submission:
// at most 3, each pointing at an allowed image type.
func EvidenceRefs(refs []string) error {
	if len(refs) > MaxEvidenceFiles {
		return fmt.Errorf("%w: at most %d evidence files", models.ErrValidation, MaxEvidenceFiles)
	}
	for _, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("%w: empty evidence reference", models.ErrValidation)
		}
		if !allowedImageExts[strings.ToLower(filepath.Ext(ref))] {
			return fmt.Errorf("%w: evidence %q is not an allowed image type", models.ErrValidation, ref)
		}
	}
	return nil
}

// EvidenceUpload checks an upload grant request before presigning.
func EvidenceUpload(filename, contentType string, size int64) error {
	if !allowedImageExts[strings.ToLower(filepath.Ext(filename))] {
		return fmt.Errorf("%w: only jpg, jpeg, png and webp files allowed", models.ErrValidation)
	}
	if !allowedImageTypes[strings.TrimSpace(strings.ToLower(contentType))] {
		return fmt.Errorf("%w: content type %q not allowed", models.ErrValidation, contentType)
	}
	if size <= 0 || size > MaxEvidenceBytes {
		return fmt.Errorf("%w: evidence file must be between 1 byte and %d bytes", models.ErrValidation, MaxEvidenceBytes)
	}
	return nil
}
