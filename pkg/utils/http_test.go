package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		if r.URL.Path == "/broken" {
			http.Error(w, "upstream", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("\xff\xd8jpeg"))
	}))
	defer server.Close()

	data, err := Download(context.Background(), server.Client(), server.URL+"/image.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("\xff\xd8jpeg"), data)

	_, err = Download(context.Background(), server.Client(), server.URL+"/missing")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.False(t, IsServerError(err))

	_, err = Download(context.Background(), server.Client(), server.URL+"/broken")
	assert.True(t, IsServerError(err))
}

func TestIsServerErrorWrapped(t *testing.T) {
	err := fmt.Errorf("speech: %w", &StatusError{StatusCode: 503, Message: "busy"})
	assert.True(t, IsServerError(err))
	assert.False(t, IsServerError(fmt.Errorf("plain")))
}
