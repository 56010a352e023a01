// Command verifact-loadtest measures token authentication and one-time code
// throughput against Redis (or miniredis when no address is given).
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/verifact"
	"github.com/MrEthical07/verifact/internal/stores"
	"github.com/MrEthical07/verifact/password"
	"github.com/MrEthical07/verifact/userstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type userState struct {
	email string
	token string
	mu    sync.Mutex
}

func main() {
	var (
		users       = flag.Int("users", 1000, "number of accounts to seed and log in")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (authenticate + otp)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "otp", "otp key prefix")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := verifact.DefaultConfig()
	cfg.JWT.Secret = []byte("verifact-loadtest-secret-0123456789")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.OTP.RedisPrefix = *prefix

	accounts := userstore.NewMemory()
	engine, err := verifact.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserStore(accounts).
		WithNotifier(verifact.NotifierFunc(func(context.Context, verifact.Notification) error { return nil })).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states, err := seed(ctx, engine, accounts, cfg.Password, *users)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	otp, err := stores.NewOTPStore(stores.NewRedisOTPBackend(client, *prefix), stores.OTPConfig{
		TTL:    cfg.OTP.TTL,
		Digits: cfg.OTP.Digits,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "otp store: %v\n", err)
		os.Exit(1)
	}

	authStats := runAuthenticatePhase(ctx, engine, states, *ops, *concurrency)
	otpStats := runOTPPhase(ctx, otp, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("authenticate", authStats)
	printStats("otp", otpStats)
}

// seed stores accounts sharing one password hash, then logs each in once.
func seed(ctx context.Context, engine *verifact.Engine, accounts *userstore.Memory, pc verifact.PasswordConfig, n int) ([]userState, error) {
	hasher, err := password.NewVerifier(password.Config{
		Memory:      pc.Memory,
		Time:        pc.Time,
		Parallelism: pc.Parallelism,
		SaltLength:  pc.SaltLength,
		KeyLength:   pc.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	const plaintext = "loadtest-password"
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	fmt.Printf("seeding %d accounts...\n", n)
	start := time.Now()
	states := make([]userState, n)
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("user-%d@loadtest.local", i)
		accounts.Put(verifact.UserRecord{
			Email:        email,
			Name:         fmt.Sprintf("user %d", i),
			PasswordHash: hash,
			Enabled:      true,
			Authorities:  []string{"ROLE_USER"},
		})
		res, err := engine.Login(ctx, email, plaintext)
		if err != nil {
			return nil, fmt.Errorf("login %s: %w", email, err)
		}
		states[i] = userState{email: email, token: res.Token}
	}
	fmt.Printf("seeded in %s\n", time.Since(start).Round(time.Millisecond))
	return states, nil
}

func runAuthenticatePhase(ctx context.Context, engine *verifact.Engine, states []userState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				t0 := time.Now()
				_, err := engine.Authenticate(ctx, states[idx].token)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

// runOTPPhase times a generate and verify pair per op. The per-account lock
// keeps workers from superseding each other's codes.
func runOTPPhase(ctx context.Context, otp *stores.OTPStore, states []userState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				state := &states[r.Intn(len(states))]

				state.mu.Lock()
				t0 := time.Now()
				code, err := otp.Generate(ctx, state.email, stores.PurposeVerifyEmail, t0)
				if err == nil {
					err = otp.Verify(ctx, state.email, stores.PurposeVerifyEmail, code, time.Now())
				}
				d := time.Since(t0)
				state.mu.Unlock()

				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	switch {
	case len(sorted) == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[len(sorted)-1]
	}
	return sorted[(len(sorted)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%-12s ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
