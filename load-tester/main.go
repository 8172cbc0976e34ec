package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Postback load generator. The duplication-percent flag resends earlier
// (offer_id, tx_id) pairs so the server's idempotent upsert path gets
// exercised under concurrency.
type Config struct {
	Endpoint           string
	Secret             string
	Sign               bool
	Total              int
	Rate               int
	Concurrency        int
	DuplicationPercent int
	MaxOfferID         int
}

func parseFlags() *Config {
	c := &Config{}
	flag.StringVar(&c.Endpoint, "endpoint", "", "Postback URL (required)")
	flag.StringVar(&c.Secret, "secret", "", "Shared postback secret (required)")
	flag.BoolVar(&c.Sign, "sign", false, "Authenticate via X-Signature HMAC instead of the secret field")
	flag.IntVar(&c.Total, "total", 10000, "Total requests")
	flag.IntVar(&c.Rate, "rate", 2000, "Requests per second")
	flag.IntVar(&c.Concurrency, "concurrency", 0, "Worker count (0=auto)")
	flag.IntVar(&c.DuplicationPercent, "duplication-percent", 0, "Redelivery percent (0 = no duplicates)")
	flag.IntVar(&c.MaxOfferID, "max-offer-id", 10, "Offer ids are drawn from [1, max-offer-id]")
	flag.Parse()

	if c.Endpoint == "" || c.Secret == "" {
		fmt.Fprintln(os.Stderr, "Error: -endpoint and -secret are required")
		flag.Usage()
		os.Exit(1)
	}

	if c.Concurrency == 0 {
		c.Concurrency = c.Rate / 20 // Auto-scale workers
		if c.Concurrency < 50 {
			c.Concurrency = 50
		}
	}

	if c.DuplicationPercent > 100 {
		c.DuplicationPercent = 100
	} else if c.DuplicationPercent < 0 {
		c.DuplicationPercent = 0
	}

	return c
}

type Stats struct {
	ok      uint64
	errors  uint64
	latency int64 // microseconds
}

// PostbackPool keeps recently sent payloads so duplicates replay the
// exact same (offer_id, tx_id) pair.
type PostbackPool struct {
	mu  sync.RWMutex
	buf []map[string]any
	max int
}

func NewPostbackPool(max int) *PostbackPool {
	return &PostbackPool{buf: make([]map[string]any, 0, max), max: max}
}

func (p *PostbackPool) Add(pb map[string]any) {
	clone := clonePostback(pb)
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) >= p.max {
		p.buf = p.buf[1:]
	}
	p.buf = append(p.buf, clone)
}

func (p *PostbackPool) GetRandom(rng *rand.Rand) (map[string]any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.buf) == 0 {
		return nil, false
	}
	idx := rng.Intn(len(p.buf))
	return clonePostback(p.buf[idx]), true
}

func clonePostback(pb map[string]any) map[string]any {
	clone := make(map[string]any, len(pb))
	for k, v := range pb {
		clone[k] = v
	}
	return clone
}

func (s *Stats) AddOK(duration time.Duration) {
	atomic.AddUint64(&s.ok, 1)
	atomic.AddInt64(&s.latency, duration.Microseconds())
}

func (s *Stats) AddError() {
	atomic.AddUint64(&s.errors, 1)
}

func (s *Stats) StartLogger(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var lastOK, lastErr uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok := atomic.LoadUint64(&s.ok)
			errs := atomic.LoadUint64(&s.errors)
			latTotal := atomic.LoadInt64(&s.latency)

			curOK := ok - lastOK
			curErr := errs - lastErr
			lastOK, lastErr = ok, errs

			avgLat := 0.0
			if ok > 0 {
				avgLat = float64(latTotal) / float64(ok) / 1000.0
			}

			log.Printf("[STATS] 1s -> OK: %d | ERR: %d | AvgLat: %.2fms | Total OK: %d", curOK, curErr, avgLat, ok)
		}
	}
}

func main() {
	cfg := parseFlags()
	stats := &Stats{}
	pool := NewPostbackPool(10000)

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency,
			MaxIdleConnsPerHost: cfg.Concurrency, // Keep as many connections open as there are workers.
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	log.Printf("Starting Load Test: Target=%s Rate=%d/s Total=%d Workers=%d Dup=%d%%",
		cfg.Endpoint, cfg.Rate, cfg.Total, cfg.Concurrency, cfg.DuplicationPercent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go stats.StartLogger(ctx)

	jobs := make(chan struct{}, cfg.Rate*2)
	var wg sync.WaitGroup
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rngs := make([]*rand.Rand, cfg.Concurrency)
	for i := 0; i < cfg.Concurrency; i++ {
		rngs[i] = rand.New(rand.NewSource(rng.Int63()))
	}

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go startWorker(client, cfg, jobs, stats, pool, rngs[i], &wg)
	}

	remaining := cfg.Total
	for remaining > 0 {
		start := time.Now()
		batch := cfg.Rate
		if remaining < batch {
			batch = remaining
		}

		for i := 0; i < batch; i++ {
			jobs <- struct{}{}
		}
		remaining -= batch

		elapsed := time.Since(start)
		if elapsed < time.Second {
			time.Sleep(time.Second - elapsed)
		}
	}

	close(jobs)
	wg.Wait()

	log.Printf("DONE. Total OK: %d | Total Errors: %d", atomic.LoadUint64(&stats.ok), atomic.LoadUint64(&stats.errors))
}

func startWorker(client *http.Client, cfg *Config, jobs <-chan struct{}, stats *Stats, pool *PostbackPool, rng *rand.Rand, wg *sync.WaitGroup) {
	defer wg.Done()

	for range jobs {
		postback := pickPostback(rng, pool, cfg)
		start := time.Now()

		err := sendPostback(client, cfg, postback)
		if err != nil {
			stats.AddError()
		} else {
			stats.AddOK(time.Since(start))
		}
	}
}

func sendPostback(client *http.Client, cfg *Config, data map[string]any) error {
	body, _ := json.Marshal(data)
	req, _ := http.NewRequest(http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cfg.Sign {
		mac := hmac.New(sha256.New, []byte(cfg.Secret))
		mac.Write(body)
		req.Header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	// Read and discard the body so the connection can be reused (Keep-Alive).
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http status: %d", resp.StatusCode)
	}
	return nil
}

var (
	events     = []string{"REG", "DEP", "DEPOSIT", "SALE", "PURCHASE", "REBILL", "LEAD"}
	currencies = []string{"USD", "EUR", "TRY"}
)

func pickPostback(rng *rand.Rand, pool *PostbackPool, cfg *Config) map[string]any {
	if cfg.DuplicationPercent > 0 && rng.Intn(100) < cfg.DuplicationPercent {
		if pb, ok := pool.GetRandom(rng); ok {
			return pb
		}
	}
	pb := generatePostback(rng, cfg)
	pool.Add(pb)
	return pb
}

func generatePostback(rng *rand.Rand, cfg *Config) map[string]any {
	pb := map[string]any{
		"offer_id": fmt.Sprintf("%d", 1+rng.Intn(cfg.MaxOfferID)),
		"tx_id":    fmt.Sprintf("tx-%d-%d", time.Now().UnixNano(), rng.Int63()),
		"event":    events[rng.Intn(len(events))],
		"sub_id":   fmt.Sprintf("sub-%d", rng.Intn(500)),
	}
	if !cfg.Sign {
		pb["secret"] = cfg.Secret
	}
	if rng.Intn(2) == 0 {
		pb["amount"] = float64(rng.Intn(10000)) / 100
		pb["currency"] = currencies[rng.Intn(len(currencies))]
	}
	return pb
}
