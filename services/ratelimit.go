package services

import (
	"sync"
	"time"

	"gallerybot/types"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttprouter"
)

// RateLimiter is a sliding-window per-IP limiter for the gallery API.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	requests := rl.requests[ip]
	i := 0
	for ; i < len(requests); i++ {
		if requests[i].After(cutoff) {
			break
		}
	}
	requests = requests[i:]

	if len(requests) >= rl.limit {
		rl.requests[ip] = requests
		return false
	}

	rl.requests[ip] = append(requests, now)
	return true
}

func (a *Api) RateLimit(next fasthttprouter.Handle) fasthttprouter.Handle {
	return func(ctx *fasthttp.RequestCtx, p fasthttprouter.Params) {
		if !a.limiter.Allow(ctx.RemoteIP().String()) {
			a.writeJSON(ctx, fasthttp.StatusTooManyRequests, types.ErrResp{Success: false, Error: "too many requests"})
			return
		}
		next(ctx, p)
	}
}
