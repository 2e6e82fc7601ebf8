package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_ReturnsCopy(t *testing.T) {
	first := List()
	require.Len(t, first, 4)

	first[0].BasePrice = 1

	second := List()
	assert.Equal(t, float64(999), second[0].BasePrice)
}

func TestByID(t *testing.T) {
	tests := []struct {
		id            string
		wantTitle     string
		wantResume    bool
		wantDocuments bool
		wantFound     bool
	}{
		{id: "SVC-WEB-DEV", wantTitle: "Web Development", wantFound: true},
		{id: "SVC-RESUME", wantTitle: "Resume Writing", wantResume: true, wantFound: true},
		{id: "SVC-VISA-DOCS", wantTitle: "Visa Documentation", wantDocuments: true, wantFound: true},
		{id: "SVC-JOB-APPLY", wantTitle: "Job Application Assist", wantResume: true, wantDocuments: true, wantFound: true},
		{id: "SVC-UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			svc, found := ByID(tt.id)
			require.Equal(t, tt.wantFound, found)
			if !tt.wantFound {
				return
			}
			assert.Equal(t, tt.wantTitle, svc.Title)
			assert.Equal(t, tt.wantResume, svc.RequiresResume)
			assert.Equal(t, tt.wantDocuments, svc.RequiresDocuments)
		})
	}
}
