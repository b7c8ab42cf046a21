package vision

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// newTestClient starts an httptest server that serves both the token and
// landmark endpoints.
func newTestClient(t *testing.T, landmark http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/2.0/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if got := r.URL.Query().Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		w.Write([]byte(`{"access_token": "tok-123", "expires_in": 2592000}`))
	})
	mux.HandleFunc("/rest/2.0/image-classify/v1/landmark", landmark)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New("app-key", "app-secret", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, &tokenCalls
}

func TestNew_RequiresCredentials(t *testing.T) {
	t.Parallel()
	if _, err := New("", "secret"); err == nil {
		t.Error("expected error for empty apiKey")
	}
	if _, err := New("key", ""); err == nil {
		t.Error("expected error for empty secretKey")
	}
}

func TestRecognizeLandmark(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("access_token"); got != "tok-123" {
			t.Errorf("access_token = %q, want tok-123", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("image"); got != "aW1hZ2VkYXRh" {
			t.Errorf("image = %q, want aW1hZ2VkYXRh", got)
		}
		w.Write([]byte(`{"log_id": 42, "result": {"landmark": "石林"}}`))
	})

	lm, err := c.RecognizeLandmark(context.Background(), "aW1hZ2VkYXRh")
	if err != nil {
		t.Fatalf("RecognizeLandmark: %v", err)
	}
	if lm.Name != "石林" {
		t.Errorf("Name = %q, want 石林", lm.Name)
	}
}

func TestRecognizeLandmark_APIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error_code": 17, "error_msg": "Open api daily request limit reached"}`))
	})

	_, err := c.RecognizeLandmark(context.Background(), "aW1n")
	if err == nil || !strings.Contains(err.Error(), "daily request limit") {
		t.Fatalf("err = %v, want API error", err)
	}
}

func TestRecognizeLandmark_NoLandmark(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"log_id": 7, "result": {"landmark": ""}}`))
	})

	_, err := c.RecognizeLandmark(context.Background(), "aW1n")
	if !errors.Is(err, ErrNoLandmark) {
		t.Fatalf("err = %v, want ErrNoLandmark", err)
	}
}

func TestTokenCaching(t *testing.T) {
	c, tokenCalls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"log_id": 1, "result": {"landmark": "故宫"}}`))
	})

	for i := 0; i < 3; i++ {
		if _, err := c.RecognizeLandmark(context.Background(), "aW1n"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Errorf("token endpoint called %d times, want 1 (cached)", got)
	}
}
