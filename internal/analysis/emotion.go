package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NegoBotEngine/NegoBot/internal/nlog"
	"github.com/pkg/errors"
)

// Emotion is one classifier label with its confidence score.
type Emotion struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

const noEmotionsSummary = "No emotions detected yet."

// EmotionAnalyzer calls an external text-classification service and keeps
// running counts of every emotion detected above the confidence threshold.
// Counts accumulate across calls until Reset.
type EmotionAnalyzer struct {
	endpoint  string
	threshold float64
	client    *http.Client

	mu          sync.Mutex
	counts      map[string]int
	confidences map[string]float64
	order       []string // labels in first-seen order, for stable summaries
}

func NewEmotionAnalyzer(endpoint string, threshold float64) *EmotionAnalyzer {
	return &EmotionAnalyzer{
		endpoint:  endpoint,
		threshold: threshold,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		counts:      map[string]int{},
		confidences: map[string]float64{},
	}
}

// AnalyzeText classifies text and records every emotion scoring at or above
// the threshold. Returns the detected emotions for this call only.
func (a *EmotionAnalyzer) AnalyzeText(ctx context.Context, text string) ([]Emotion, error) {
	if a.endpoint == "" {
		return nil, errors.New("emotion classifier not configured")
	}

	reqJSON, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling classifier request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewBuffer(reqJSON))
	if err != nil {
		return nil, errors.Wrap(err, "error creating classifier request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "classifier request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var scores []Emotion
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return nil, errors.Wrap(err, "error parsing classifier response")
	}

	var detected []Emotion
	a.mu.Lock()
	for _, emotion := range scores {
		if emotion.Score < a.threshold {
			continue
		}
		detected = append(detected, emotion)

		if _, seen := a.counts[emotion.Label]; !seen {
			a.order = append(a.order, emotion.Label)
		}
		a.counts[emotion.Label]++
		a.confidences[emotion.Label] += emotion.Score
	}
	a.mu.Unlock()

	nlog.Debug("Analysis", "emotions_detected", len(detected), "threshold", a.threshold)
	return detected, nil
}

// Summarize produces a one-line summary of every emotion detected so far with
// its average confidence, most frequent first.
func (a *EmotionAnalyzer) Summarize() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.counts) == 0 {
		return noEmotionsSummary
	}

	labels := make([]string, len(a.order))
	copy(labels, a.order)
	sort.SliceStable(labels, func(i, j int) bool {
		return a.counts[labels[i]] > a.counts[labels[j]]
	})

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		avg := a.confidences[label] / float64(a.counts[label])
		parts = append(parts, fmt.Sprintf("%s confidence: %.0f%%", label, avg*100))
	}

	return strings.Join(parts, " | ")
}

// Reset clears accumulated counts and confidences.
func (a *EmotionAnalyzer) Reset() {
	a.mu.Lock()
	a.counts = map[string]int{}
	a.confidences = map[string]float64{}
	a.order = nil
	a.mu.Unlock()
}
