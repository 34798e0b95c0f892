package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"taskMap/internal/logger"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LimitStore считает запросы клиента в фиксированном окне
type LimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

type clientInfo struct {
	count   int
	resetAt time.Time
}

// MemoryStore держит счётчики в памяти процесса. Просроченные записи
// вычищаются не чаще раза в sweepEvery при очередном Hit.
type MemoryStore struct {
	mtx        sync.Mutex
	clients    map[string]*clientInfo
	now        func() time.Time
	sweepEvery time.Duration
	lastSweep  time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:    make(map[string]*clientInfo),
		now:        time.Now,
		sweepEvery: time.Minute,
	}
}

// sweep вызывается под m.mtx
func (m *MemoryStore) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.sweepEvery {
		return
	}
	m.lastSweep = now
	for key, info := range m.clients {
		if now.After(info.resetAt) {
			delete(m.clients, key)
		}
	}
}

func (m *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := m.now()

	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.sweep(now)
	info, exists := m.clients[key]
	if !exists || now.After(info.resetAt) {
		info = &clientInfo{count: 0, resetAt: now.Add(window)}
		m.clients[key] = info
	}
	info.count++
	return info.count, info.resetAt, nil
}

// RedisStore - общий счётчик для нескольких экземпляров сервиса
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("подключение к Redis: %w", err)
	}
	return &RedisStore{client: client, prefix: "taskmap:ratelimit:"}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	redisKey := s.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("счётчик лимита: %w", err)
	}

	remaining := ttl.Val()
	// ключ только что создан и ещё без срока жизни
	if remaining < 0 {
		if err := s.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("срок жизни лимита: %w", err)
		}
		remaining = window
	}
	return int(incr.Val()), time.Now().Add(remaining), nil
}

// RateLimit пропускает rpm запросов в минуту с одного IP. Если хранилище
// недоступно, запрос пропускается.
func RateLimit(rpm int, store LimitStore) func(http.Handler) http.Handler {
	window := time.Minute

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIp(r)
			now := time.Now()

			count, resetAt, err := store.Hit(r.Context(), ip, window)
			if err != nil {
				logger.Warn("HTTP: Хранилище лимитов недоступно", zap.Error(err), zap.String("client_ip", ip))
				next.ServeHTTP(w, r)
				return
			}

			if count > rpm {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(resetAt.Sub(now).Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)

				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": int(resetAt.Sub(now).Seconds()),
					"request_id":  GetRequestID(r.Context()),
				})
				return
			}

			remaining := rpm - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rpm))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}
