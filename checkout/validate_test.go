package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-checkout-system/models"
)

func validForm() models.CheckoutForm {
	return models.CheckoutForm{
		ContactName:      "Asha",
		ContactEmail:     "asha@example.com",
		Quantity:         1,
		UnitPriceBase:    499,
		UnitPriceDisplay: 499,
		SelectedCurrency: models.CurrencyINR,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		service   models.Service
		mutate    func(*models.CheckoutForm)
		wantField string
	}{
		{
			name:    "Success - no attachments required",
			service: models.Service{Title: "Web Development"},
			mutate:  func(f *models.CheckoutForm) {},
		},
		{
			name:      "Failure - missing name",
			service:   models.Service{Title: "Web Development"},
			mutate:    func(f *models.CheckoutForm) { f.ContactName = "  " },
			wantField: "contact_name",
		},
		{
			name:      "Failure - missing email",
			service:   models.Service{Title: "Web Development"},
			mutate:    func(f *models.CheckoutForm) { f.ContactEmail = "" },
			wantField: "contact_email",
		},
		{
			name:      "Failure - resume required but missing",
			service:   models.Service{Title: "Resume Writing", RequiresResume: true},
			mutate:    func(f *models.CheckoutForm) {},
			wantField: "resume",
		},
		{
			name:    "Success - resume attached",
			service: models.Service{Title: "Resume Writing", RequiresResume: true},
			mutate: func(f *models.CheckoutForm) {
				f.Resume = &models.FileRef{Name: "cv.pdf", Size: 1024}
			},
		},
		{
			name:    "Failure - resume wrong type",
			service: models.Service{Title: "Resume Writing", RequiresResume: true},
			mutate: func(f *models.CheckoutForm) {
				f.Resume = &models.FileRef{Name: "cv.txt", Size: 1024}
			},
			wantField: "resume",
		},
		{
			name:    "Failure - resume too large",
			service: models.Service{Title: "Resume Writing", RequiresResume: true},
			mutate: func(f *models.CheckoutForm) {
				f.Resume = &models.FileRef{Name: "cv.pdf", Size: MaxResumeSize + 1}
			},
			wantField: "resume",
		},
		{
			name:      "Failure - documents required but missing",
			service:   models.Service{Title: "Visa Documentation", RequiresDocuments: true},
			mutate:    func(f *models.CheckoutForm) {},
			wantField: "documents",
		},
		{
			name:    "Success - documents attached",
			service: models.Service{Title: "Visa Documentation", RequiresDocuments: true},
			mutate: func(f *models.CheckoutForm) {
				f.Documents = []models.FileRef{
					{Name: "passport.jpg", Size: 2048},
					{Name: "statement.pdf", Size: 4096},
				}
			},
		},
		{
			name:    "Failure - document wrong type",
			service: models.Service{Title: "Visa Documentation", RequiresDocuments: true},
			mutate: func(f *models.CheckoutForm) {
				f.Documents = []models.FileRef{{Name: "notes.docx", Size: 2048}}
			},
			wantField: "documents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			verr := Validate(tt.service, form)
			if tt.wantField == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidateResume_DOCAndDOCXAllowed(t *testing.T) {
	assert.Nil(t, ValidateResume(models.FileRef{Name: "cv.doc", Size: 100}))
	assert.Nil(t, ValidateResume(models.FileRef{Name: "CV.DOCX", Size: 100}))
}
