// Package avatar classifies an avatar source as an image URL, an emoji
// glyph or nothing, and probes image URLs with a bounded retry before
// falling back to a letter avatar.
package avatar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
)

type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindEmoji
)

// Classify decides how a source value should be rendered. URL-ish
// prefixes win; otherwise any symbol-class rune counts as an emoji.
func Classify(src string) Kind {
	if src == "" {
		return KindNone
	}
	if strings.HasPrefix(src, "http") || strings.HasPrefix(src, "/") || strings.HasPrefix(src, "data:") {
		return KindImage
	}
	for _, r := range src {
		if unicode.Is(unicode.So, r) || r >= 0x1F000 {
			return KindEmoji
		}
	}
	return KindNone
}

const maxRetries = 2

// Resolved is the render decision for one avatar.
type Resolved struct {
	Kind    Kind   `json:"kind"`
	Value   string `json:"value"`
	Retries int    `json:"retries"`
	Failed  bool   `json:"failed"`
}

// Resolver probes avatar image URLs. The sleep function is injectable
// so tests can observe the retry schedule without waiting.
type Resolver struct {
	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Resolver{
		client: client,
		sleep: func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		},
	}
}

// Resolve turns a source value into a render decision. http(s) URLs are
// probed; a failed probe is retried twice with 1s then 2s delay before
// falling back to the letter avatar with the failure flag set. Relative
// and data: sources resolve without probing.
func (r *Resolver) Resolve(ctx context.Context, src, name string) Resolved {
	switch Classify(src) {
	case KindEmoji:
		return Resolved{Kind: KindEmoji, Value: src}
	case KindImage:
		if !strings.HasPrefix(src, "http") {
			return Resolved{Kind: KindImage, Value: src}
		}
		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				if err := r.sleep(ctx, time.Duration(attempt)*time.Second); err != nil {
					break
				}
			}
			if r.probe(ctx, src) == nil {
				return Resolved{Kind: KindImage, Value: src, Retries: attempt}
			}
		}
		return Resolved{Kind: KindNone, Value: letterOf(name), Retries: maxRetries, Failed: true}
	}
	return Resolved{Kind: KindNone, Value: letterOf(name)}
}

func (r *Resolver) probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("avatar probe: HTTP %d", resp.StatusCode)
	}
	return nil
}

func letterOf(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
