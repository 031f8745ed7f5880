package services

import (
	"encoding/json"
	"strconv"
	"time"

	"gallerybot/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lab259/cors"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttprouter"
)

const (
	ServiceName = "gallerybot"
	Version     = "1.0.0"

	DefaultPage  = 1
	DefaultLimit = 12
	LatestCount  = 5
)

type Api struct {
	cfg     *Config
	store   *Store
	stats   *StatsAggregator
	bot     *Bot
	limiter *RateLimiter
	started time.Time
}

func NewApi(cfg *Config, store *Store, stats *StatsAggregator, bot *Bot) (*Api, error) {
	r := fasthttprouter.New()

	cs := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			fasthttp.MethodHead,
			fasthttp.MethodGet,
			fasthttp.MethodPost,
		},
		AllowedHeaders: []string{"*"},
	})

	api := &Api{
		cfg:     cfg,
		store:   store,
		stats:   stats,
		bot:     bot,
		limiter: NewRateLimiter(60, time.Minute),
		started: time.Now(),
	}

	r.GET("/api/posts", api.RateLimit(api.ListPosts))
	r.GET("/api/posts/latest", api.RateLimit(api.LatestPosts))
	r.POST("/api/posts/:id/view", api.RateLimit(api.CountView))
	r.GET("/api/stats", api.RateLimit(api.ReadStats))

	r.POST("/webhook", api.Webhook)
	r.GET("/health", api.Health)

	r.NotFound = NewStatic("web")

	s := &fasthttp.Server{
		ReadTimeout:  time.Second * 5,
		IdleTimeout:  time.Second * 5,
		WriteTimeout: time.Second * 5,
		Name:         ServiceName,
		Handler:      cs.Handler(r.Handler),
	}

	go func() {
		err := s.ListenAndServe(":" + cfg.Port)
		if err != nil {
			log.Fatal().Err(err).Send()
		}
	}()

	return api, nil
}

func (a *Api) writeJSON(ctx *fasthttp.RequestCtx, code int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		a.internalErr(ctx, err)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(code)
	_, _ = ctx.Write(b)
}

// internalErr logs the detail server-side and answers a generic envelope.
func (a *Api) internalErr(ctx *fasthttp.RequestCtx, err error) {
	log.Error().Err(err).Send()

	b, _ := json.Marshal(types.ErrResp{Success: false, Error: "internal error"})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	_, _ = ctx.Write(b)
}

// queryInt falls back to def on anything that is not a positive number.
func queryInt(ctx *fasthttp.RequestCtx, key string, def int) int {
	v, err := strconv.Atoi(string(ctx.QueryArgs().Peek(key)))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func (a *Api) ListPosts(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	page := queryInt(ctx, "page", DefaultPage)
	limit := queryInt(ctx, "limit", DefaultLimit)

	posts := a.store.Sorted()
	total := len(posts)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	a.writeJSON(ctx, fasthttp.StatusOK, types.PostsResp{
		Success:    true,
		Posts:      posts[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		Stats:      a.stats.Recompute(),
	})
}

func (a *Api) LatestPosts(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	posts := a.store.Sorted()
	if len(posts) > LatestCount {
		posts = posts[:LatestCount]
	}

	a.writeJSON(ctx, fasthttp.StatusOK, types.LatestResp{Success: true, Posts: posts})
}

// CountView is a silent no-op success for unknown or malformed ids.
func (a *Api) CountView(ctx *fasthttp.RequestCtx, p fasthttprouter.Params) {
	id, err := strconv.ParseInt(p.ByName("id"), 10, 64)
	if err != nil {
		a.writeJSON(ctx, fasthttp.StatusOK, types.OkResp{Success: true})
		return
	}

	found, err := a.store.IncrementViews(id)
	if err != nil {
		a.internalErr(ctx, err)
		return
	}
	if found {
		a.stats.Recompute()
	}

	a.writeJSON(ctx, fasthttp.StatusOK, types.OkResp{Success: true})
}

func (a *Api) ReadStats(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	a.writeJSON(ctx, fasthttp.StatusOK, types.StatsResp{Success: true, Stats: a.stats.Recompute()})
}

func (a *Api) Webhook(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	var upd tgbotapi.Update

	if err := json.Unmarshal(ctx.PostBody(), &upd); err != nil {
		a.writeJSON(ctx, fasthttp.StatusBadRequest, types.ErrResp{Success: false, Error: err.Error()})
		return
	}

	a.bot.HandleUpdate(upd)

	a.writeJSON(ctx, fasthttp.StatusOK, types.OkResp{Success: true})
}

func (a *Api) Health(ctx *fasthttp.RequestCtx, _ fasthttprouter.Params) {
	a.writeJSON(ctx, fasthttp.StatusOK, types.HealthResp{
		Success: true,
		Service: ServiceName,
		Version: Version,
		Uptime:  time.Since(a.started).Round(time.Second).String(),
	})
}
