package checkout

import (
	"fmt"
	"path/filepath"
	"strings"

	"freelance-checkout-system/models"
)

// MaxResumeSize is the upload ceiling for resumes.
const MaxResumeSize = 5 << 20 // 5MB

var resumeExts = map[string]bool{".pdf": true, ".doc": true, ".docx": true}
var documentExts = map[string]bool{".pdf": true, ".jpg": true, ".jpeg": true, ".png": true}

// ValidationError carries the field the error should be shown against.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a submitted form against the service's requirements.
// It runs before any network call; a failure means nothing was uploaded.
func Validate(svc models.Service, form models.CheckoutForm) *ValidationError {
	if strings.TrimSpace(form.ContactName) == "" {
		return &ValidationError{Field: "contact_name", Message: "name is required"}
	}
	if strings.TrimSpace(form.ContactEmail) == "" {
		return &ValidationError{Field: "contact_email", Message: "email is required"}
	}
	if form.Quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}

	if svc.RequiresResume {
		if form.Resume == nil {
			return &ValidationError{Field: "resume", Message: "resume is required for this service"}
		}
		if err := ValidateResume(*form.Resume); err != nil {
			return err
		}
	}

	if svc.RequiresDocuments {
		if len(form.Documents) == 0 {
			return &ValidationError{Field: "documents", Message: "supporting documents are required for this service"}
		}
		for _, doc := range form.Documents {
			if err := ValidateDocument(doc); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateResume enforces PDF/DOC under 5MB.
func ValidateResume(f models.FileRef) *ValidationError {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !resumeExts[ext] {
		return &ValidationError{Field: "resume", Message: "resume must be a PDF or DOC file"}
	}
	if f.Size > MaxResumeSize {
		return &ValidationError{Field: "resume", Message: "resume must be 5MB or smaller"}
	}
	return nil
}

// ValidateDocument enforces PDF/JPG/PNG.
func ValidateDocument(f models.FileRef) *ValidationError {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !documentExts[ext] {
		return &ValidationError{Field: "documents", Message: fmt.Sprintf("%s must be a PDF, JPG or PNG file", f.Name)}
	}
	return nil
}
