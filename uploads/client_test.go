package uploads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freelance-checkout-system/models"
)

func tempFile(t *testing.T, name, content string) models.FileRef {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return models.FileRef{Name: name, Path: path, Size: int64(len(content))}
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name          string
		kind          Kind
		wantPath      string
		mockHandler   func(w http.ResponseWriter, r *http.Request)
		wantURL       string
		wantErr       bool
		errorContains string
	}{
		{
			name:     "Success - resume endpoint",
			kind:     KindResume,
			wantPath: "/api/uploadServiceRs",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"url": "http://files.local/cv.pdf"})
			},
			wantURL: "http://files.local/cv.pdf",
		},
		{
			name:     "Success - documents endpoint",
			kind:     KindDocument,
			wantPath: "/api/uploadDocuments",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"url": "http://files.local/passport.jpg"})
			},
			wantURL: "http://files.local/passport.jpg",
		},
		{
			name:     "Failure - server error with message",
			kind:     KindResume,
			wantPath: "/api/uploadServiceRs",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "storage quota exceeded"})
			},
			wantErr:       true,
			errorContains: "storage quota exceeded",
		},
		{
			name:     "Failure - non-JSON error body",
			kind:     KindResume,
			wantPath: "/api/uploadServiceRs",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("Bad Gateway"))
			},
			wantErr:       true,
			errorContains: "status 502",
		},
		{
			name:     "Failure - missing url in response",
			kind:     KindResume,
			wantPath: "/api/uploadServiceRs",
			mockHandler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{})
			},
			wantErr:       true,
			errorContains: "no url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)

				require.NoError(t, r.ParseMultipartForm(1<<20))
				file, header, err := r.FormFile("file")
				require.NoError(t, err)
				defer file.Close()
				assert.Equal(t, "cv.pdf", header.Filename)

				tt.mockHandler(w, r)
			}))
			defer mockServer.Close()

			client := New(mockServer.URL)
			file := tempFile(t, "cv.pdf", "pdf bytes")

			url, err := client.Upload(context.Background(), file, tt.kind)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
		})
	}
}

func TestUpload_MissingLocalFile(t *testing.T) {
	client := New("http://localhost:0")
	_, err := client.Upload(context.Background(), models.FileRef{Name: "gone.pdf", Path: "/nonexistent/gone.pdf"}, KindResume)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.pdf")
}
