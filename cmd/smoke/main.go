// Synthetic-traffic generator: drives a running feedback_gate instance through
// both flows for deploy-time smoke checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"feedback_gate/internal/adapters/observability"
)

type sessionView struct {
	ID        string `json:"id"`
	Phase     string `json:"phase"`
	Valid     bool   `json:"isValid"`
	ReviewURL string `json:"reviewUrl"`
}

func main() {
	var (
		base    = flag.String("base", "http://localhost:8080", "API base URL")
		total   = flag.Int("n", 20, "number of synthetic submissions")
		workers = flag.Int("workers", 4, "concurrent submitters")
		appEnv  = flag.String("env", "dev", "log format env")
	)
	flag.Parse()

	log.Logger = observability.NewLogger(*appEnv)
	log.Info().Str("base", *base).Int("n", *total).Int("workers", *workers).Msg("smoke starting")

	ctx := context.Background()
	hc := &http.Client{Timeout: 30 * time.Second}
	sem := semaphore.NewWeighted(int64(*workers))
	var wg sync.WaitGroup

	for i := 0; i < *total; i++ {
		i := i

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			// alternate low and high ratings
			stars := 2
			if i%2 == 1 {
				stars = 5
			}
			if err := runFlow(ctx, hc, *base, i, stars); err != nil {
				log.Warn().Int("i", i).Err(err).Msg("flow failed")
				return
			}
			log.Info().Int("i", i).Int("stars", stars).Msg("flow ok")
		}()
	}

	wg.Wait()
	log.Info().Msg("smoke completed")
}

func runFlow(ctx context.Context, hc *http.Client, base string, i, stars int) error {
	var s sessionView
	if err := call(ctx, hc, "POST", base+"/v1/sessions",
		map[string]string{"deviceKey": fmt.Sprintf("smoke-%d", i)}, &s); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	sid := base + "/v1/sessions/" + s.ID

	if err := call(ctx, hc, "PUT", sid+"/identity",
		map[string]string{"name": fmt.Sprintf("Smoke %d", i), "phone": "87771234567"}, &s); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	if err := call(ctx, hc, "PUT", sid+"/rating", map[string]int{"stars": stars}, &s); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	if !s.Valid {
		return fmt.Errorf("form did not validate: %+v", s)
	}
	if err := call(ctx, hc, "POST", sid+"/submit", map[string]string{}, &s); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	if stars >= 4 {
		if s.Phase != "high_rating_dispatched" {
			return fmt.Errorf("expected dispatch, got %s", s.Phase)
		}
		return nil
	}

	if s.Phase != "low_rating_capture" {
		return fmt.Errorf("expected capture, got %s", s.Phase)
	}
	review := fmt.Sprintf("synthetic complaint %d: the smoke test was not satisfied at all", i)
	if err := call(ctx, hc, "PUT", sid+"/review", map[string]string{"text": review}, &s); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	if err := call(ctx, hc, "POST", sid+"/complaint", nil, &s); err != nil {
		return fmt.Errorf("complaint: %w", err)
	}
	if s.Phase != "succeeded" {
		return fmt.Errorf("expected succeeded, got %s", s.Phase)
	}
	return nil
}

func call(ctx context.Context, hc *http.Client, method, url string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
