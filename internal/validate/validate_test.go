package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/akunmarket/platform/claims-service/internal/models"
)

func TestReason(t *testing.T) {
	if err := Reason("Akun tidak bisa login"); err != nil {
		t.Errorf("valid reason rejected: %v", err)
	}
	if err := Reason("rusak"); !errors.Is(err, models.ErrValidation) {
		t.Errorf("5-char reason must fail, got %v", err)
	}
	if err := Reason("   padded    "); !errors.Is(err, models.ErrValidation) {
		t.Errorf("length must be checked after trimming, got %v", err)
	}
	if err := Reason(strings.Repeat("a", 501)); !errors.Is(err, models.ErrValidation) {
		t.Errorf("501-char reason must fail, got %v", err)
	}
	if err := Reason(strings.Repeat("a", 500)); err != nil {
		t.Errorf("500-char reason is fine, got %v", err)
	}
}

func TestEvidenceRefs(t *testing.T) {
	if err := EvidenceRefs(nil); err != nil {
		t.Errorf("no evidence is fine: %v", err)
	}
	ok := []string{"evidence/u1/a.png", "evidence/u1/b.jpg", "evidence/u1/c.webp"}
	if err := EvidenceRefs(ok); err != nil {
		t.Errorf("3 image refs are fine: %v", err)
	}
	if err := EvidenceRefs(append(ok, "evidence/u1/d.png")); !errors.Is(err, models.ErrValidation) {
		t.Errorf("4 refs must fail, got %v", err)
	}
	if err := EvidenceRefs([]string{"evidence/u1/a.pdf"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("non-image ref must fail, got %v", err)
	}
	if err := EvidenceRefs([]string{"  "}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("blank ref must fail, got %v", err)
	}
}

func TestEvidenceUpload(t *testing.T) {
	if err := EvidenceUpload("bukti.png", "image/png", 1024); err != nil {
		t.Errorf("valid upload rejected: %v", err)
	}
	if err := EvidenceUpload("bukti.png", "IMAGE/PNG ", 1024); err != nil {
		t.Errorf("content type must match case-insensitively: %v", err)
	}
	if err := EvidenceUpload("bukti.txt", "text/plain", 1024); !errors.Is(err, models.ErrValidation) {
		t.Errorf("text file must fail, got %v", err)
	}
	if err := EvidenceUpload("bukti.png", "image/png", MaxEvidenceBytes+1); !errors.Is(err, models.ErrValidation) {
		t.Errorf("oversized file must fail, got %v", err)
	}
	if err := EvidenceUpload("bukti.png", "image/png", 0); !errors.Is(err, models.ErrValidation) {
		t.Errorf("empty file must fail, got %v", err)
	}
}
