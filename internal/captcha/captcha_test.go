package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnstileVerify(t *testing.T) {
	var gotSecret, gotResponse string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotSecret = r.PostFormValue("secret")
		gotResponse = r.PostFormValue("response")

		_ = json.NewEncoder(w).Encode(map[string]any{"success": gotResponse == "good-token"})
	}))
	defer srv.Close()

	v := NewTurnstileWithEndpoint("s3cret", srv.URL)

	ok, err := v.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "s3cret", gotSecret)
	assert.Equal(t, "good-token", gotResponse)

	ok, err = v.Verify(context.Background(), "bad-token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTurnstileVerify_EmptyTokenSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("siteverify must not be called for an empty token")
	}))
	defer srv.Close()

	v := NewTurnstileWithEndpoint("s3cret", srv.URL)
	ok, err := v.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTurnstileVerify_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	v := NewTurnstileWithEndpoint("s3cret", srv.URL)
	_, err := v.Verify(context.Background(), "token")
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	ok, err := Nop{}.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, ok)
}
