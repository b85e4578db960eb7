// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/trendcrawl/internal/httputil"
	"github.com/pdiddy/trendcrawl/pkg/types"
)

// Gemini summarizes records with the Gemini generateContent API in two
// passes: one call classifies and deduplicates the whole selection, then
// the kept records are summarized in batches.
type Gemini struct {
	Config types.DigestConfig
	Client *http.Client

	// Log receives progress and warnings.
	Log io.Writer

	// Sleep waits between summary batches; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewGemini returns a Gemini summarizer for cfg.
func NewGemini(cfg types.DigestConfig, w io.Writer) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	return &Gemini{
		Config: cfg,
		Client: &http.Client{Timeout: cfg.Timeout},
		Log:    w,
	}, nil
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type classification struct {
	Index         int    `json:"index"`
	Category      string `json:"category"`
	MergedIndices []int  `json:"merged_indices"`
}

type summary struct {
	Index        int      `json:"index"`
	Headline     string   `json:"headline"`
	Detail       string   `json:"detail"`
	BestComments []string `json:"best_comments"`
}

// Summarize classifies records and summarizes the ones the model keeps. A
// classification that fails or keeps nothing is an error. A failed summary
// batch does not stop the others; the entries that were produced are
// returned with an error wrapping ErrPartialSummary.
func (g *Gemini) Summarize(ctx context.Context, records []types.Record) ([]types.DigestEntry, error) {
	w := g.Log
	if w == nil {
		w = io.Discard
	}

	kept, err := g.classify(ctx, records)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "classified %d posts, kept %d\n", len(records), len(kept))

	size := g.Config.BatchSize
	if size <= 0 {
		size = len(kept)
	}
	total := (len(kept) + size - 1) / size

	var entries []types.DigestEntry
	failed := 0
	for n, start := 1, 0; start < len(kept); n, start = n+1, start+size {
		if start > 0 {
			if err := g.sleep(ctx, g.Config.BatchDelay); err != nil {
				return nil, err
			}
		}
		batch := kept[start:min(start+size, len(kept))]
		fmt.Fprintf(w, "summarizing batch %d/%d (%d posts)\n", n, total, len(batch))

		got, err := g.summarize(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			fmt.Fprintf(w, "  failed: batch %d: %v\n", n, err)
			failed++
			continue
		}
		entries = append(entries, got...)
	}
	if failed > 0 {
		return entries, fmt.Errorf("%w: %d of %d batches failed", ErrPartialSummary, failed, total)
	}
	return entries, nil
}

func (g *Gemini) classify(ctx context.Context, records []types.Record) ([]classified, error) {
	prompt, err := renderClassifyPrompt(records)
	if err != nil {
		return nil, fmt.Errorf("rendering classify prompt: %w", err)
	}
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classifying: %w", err)
	}
	var cs []classification
	if err := parseJSONArray(text, &cs); err != nil {
		return nil, fmt.Errorf("parsing classification: %w", err)
	}

	seen := map[int]bool{}
	var kept []classified
	for _, c := range cs {
		if c.Index < 0 || c.Index >= len(records) || seen[c.Index] {
			continue
		}
		seen[c.Index] = true
		kept = append(kept, classified{Record: records[c.Index], Category: c.Category})
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("classification kept no posts")
	}
	return kept, nil
}

func (g *Gemini) summarize(ctx context.Context, batch []classified) ([]types.DigestEntry, error) {
	prompt, err := renderSummaryPrompt(g.Config.Language, batch)
	if err != nil {
		return nil, fmt.Errorf("rendering summary prompt: %w", err)
	}
	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var ss []summary
	if err := parseJSONArray(text, &ss); err != nil {
		return nil, err
	}

	var out []types.DigestEntry
	for _, s := range ss {
		if s.Index < 0 || s.Index >= len(batch) || s.Headline == "" {
			continue
		}
		r := batch[s.Index]
		out = append(out, types.DigestEntry{
			Category:     r.Category,
			Headline:     s.Headline,
			Detail:       s.Detail,
			BestComments: s.BestComments,
			URL:          r.URL,
			Source:       r.Source,
			Thumbnail:    r.Thumbnail,
		})
	}
	return out, nil
}

// generate sends one prompt and returns the text of the first candidate.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: 0.3, MaxOutputTokens: 8192},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(g.Config.BaseURL, "/"), url.PathEscape(g.Config.Model), url.QueryEscape(g.Config.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, g.Config.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini API returned no candidates")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

func (g *Gemini) sleep(ctx context.Context, d time.Duration) error {
	if g.Sleep != nil {
		return g.Sleep(ctx, d)
	}
	return wait(ctx, d)
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
