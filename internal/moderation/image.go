package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	classPorn   = "Porn"
	classHentai = "Hentai"
	classSexy   = "Sexy"

	pornThreshold   = 0.6
	hentaiThreshold = 0.6
	sexyThreshold   = 0.85
)

// ClassPrediction mirrors one entry of the classifier response:
// classify(image) -> [{className, probability}].
type ClassPrediction struct {
	ClassName   string  `json:"className"`
	Probability float64 `json:"probability"`
}

// ImageModerator screens uploaded photos through an external NSFW
// classification endpoint.
//
// Policy: the moderator fails open. If the classifier cannot be reached,
// warmed up, or the image cannot be decoded on the inference side, the photo
// is allowed through with an advisory message. Availability is preferred over
// strict enforcement here; the upload pipeline itself fails closed.
type ImageModerator struct {
	httpClient *http.Client
	baseURL    string

	// Warm-up is memoized process-wide, including its error, so concurrent
	// first callers never trigger duplicate model loads.
	warmOnce sync.Once
	warmErr  error
}

func NewImageModerator(httpClient *http.Client, baseURL string) *ImageModerator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ImageModerator{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (m *ImageModerator) warmUp(ctx context.Context) error {
	m.warmOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/model", nil)
		if err != nil {
			m.warmErr = fmt.Errorf("create warm-up request: %w", err)
			return
		}
		resp, err := m.httpClient.Do(req)
		if err != nil {
			m.warmErr = fmt.Errorf("load classifier: %w", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			m.warmErr = fmt.Errorf("load classifier: status %d", resp.StatusCode)
		}
	})
	return m.warmErr
}

func (m *ImageModerator) classify(ctx context.Context, image []byte, contentType string) ([]ClassPrediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/classify", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("classifier error: status %d: %s", resp.StatusCode, string(data))
	}

	var predictions []ClassPrediction
	if err := json.NewDecoder(resp.Body).Decode(&predictions); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return predictions, nil
}

// ModerateImage classifies one photo. Thresholds are checked in a fixed
// order (porn, hentai, sexy); the first exceeded threshold determines the
// rejection message. Any internal failure allows the photo through.
func (m *ImageModerator) ModerateImage(ctx context.Context, image []byte, contentType string) ModerationResult {
	if m == nil || m.baseURL == "" {
		return failOpen(errors.New("classifier is not configured"))
	}

	if err := m.warmUp(ctx); err != nil {
		return failOpen(err)
	}

	predictions, err := m.classify(ctx, image, contentType)
	if err != nil {
		return failOpen(err)
	}

	probs := make(map[string]float64, len(predictions))
	for _, p := range predictions {
		probs[p.ClassName] = p.Probability
	}

	checks := []struct {
		class     string
		threshold float64
		message   string
	}{
		{classPorn, pornThreshold, "image rejected: explicit content detected"},
		{classHentai, hentaiThreshold, "image rejected: drawn explicit content detected"},
		{classSexy, sexyThreshold, "image rejected: suggestive content detected"},
	}
	for _, c := range checks {
		if probs[c.class] > c.threshold {
			return ModerationResult{IsAllowed: false, Message: c.message}
		}
	}

	return ModerationResult{IsAllowed: true}
}

func failOpen(err error) ModerationResult {
	return ModerationResult{
		IsAllowed: true,
		Message:   fmt.Sprintf("image screening unavailable, allowing upload: %v", err),
	}
}
