package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func newClassifierServer(t *testing.T, predictions []ClassPrediction, loads *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/model":
			if loads != nil {
				atomic.AddInt32(loads, 1)
			}
			w.WriteHeader(http.StatusOK)
		case "/classify":
			json.NewEncoder(w).Encode(predictions)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestModerateImageAllowsSafeImage(t *testing.T) {
	srv := newClassifierServer(t, []ClassPrediction{
		{ClassName: "Neutral", Probability: 0.9},
		{ClassName: "Porn", Probability: 0.05},
	}, nil)
	defer srv.Close()

	m := NewImageModerator(srv.Client(), srv.URL)
	res := m.ModerateImage(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	if !res.IsAllowed {
		t.Fatalf("safe image rejected: %+v", res)
	}
}

func TestModerateImageThresholdOrder(t *testing.T) {
	tests := []struct {
		name        string
		predictions []ClassPrediction
		wantMessage string
	}{
		{
			name: "porn over threshold",
			predictions: []ClassPrediction{
				{ClassName: "Porn", Probability: 0.61},
				{ClassName: "Sexy", Probability: 0.99},
			},
			wantMessage: "explicit content",
		},
		{
			name: "hentai checked before sexy",
			predictions: []ClassPrediction{
				{ClassName: "Hentai", Probability: 0.7},
				{ClassName: "Sexy", Probability: 0.9},
			},
			wantMessage: "drawn explicit",
		},
		{
			name: "sexy needs higher bar",
			predictions: []ClassPrediction{
				{ClassName: "Sexy", Probability: 0.86},
			},
			wantMessage: "suggestive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newClassifierServer(t, tt.predictions, nil)
			defer srv.Close()

			m := NewImageModerator(srv.Client(), srv.URL)
			res := m.ModerateImage(context.Background(), []byte("x"), "image/jpeg")
			if res.IsAllowed {
				t.Fatalf("expected rejection, got %+v", res)
			}
			if !strings.Contains(res.Message, tt.wantMessage) {
				t.Errorf("message %q does not mention %q", res.Message, tt.wantMessage)
			}
		})
	}
}

func TestModerateImageSexyBelowThresholdAllowed(t *testing.T) {
	srv := newClassifierServer(t, []ClassPrediction{
		{ClassName: "Sexy", Probability: 0.84},
	}, nil)
	defer srv.Close()

	m := NewImageModerator(srv.Client(), srv.URL)
	if res := m.ModerateImage(context.Background(), []byte("x"), "image/jpeg"); !res.IsAllowed {
		t.Fatalf("0.84 sexy must pass the 0.85 threshold, got %+v", res)
	}
}

func TestModerateImageFailsOpenOnClassifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewImageModerator(srv.Client(), srv.URL)
	res := m.ModerateImage(context.Background(), []byte("x"), "image/jpeg")
	if !res.IsAllowed {
		t.Fatalf("moderator must fail open, got %+v", res)
	}
	if res.Message == "" {
		t.Error("fail-open result should carry an advisory message")
	}
}

func TestModerateImageFailsOpenWhenUnconfigured(t *testing.T) {
	m := NewImageModerator(nil, "")
	if res := m.ModerateImage(context.Background(), []byte("x"), "image/jpeg"); !res.IsAllowed {
		t.Fatalf("unconfigured moderator must fail open, got %+v", res)
	}
}

func TestWarmUpRunsOnce(t *testing.T) {
	var loads int32
	srv := newClassifierServer(t, []ClassPrediction{{ClassName: "Neutral", Probability: 1}}, &loads)
	defer srv.Close()

	m := NewImageModerator(srv.Client(), srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.ModerateImage(context.Background(), []byte("x"), "image/jpeg")
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected a single warm-up load, got %d", got)
	}
}
