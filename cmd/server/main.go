package main

import (
	"context"
	"log"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/kyiku/jigsaw-puzzle-back/internal/ai"
	"github.com/kyiku/jigsaw-puzzle-back/internal/config"
	"github.com/kyiku/jigsaw-puzzle-back/internal/game"
	"github.com/kyiku/jigsaw-puzzle-back/internal/handler"
	"github.com/kyiku/jigsaw-puzzle-back/internal/middleware"
	"github.com/kyiku/jigsaw-puzzle-back/internal/response"
	"github.com/kyiku/jigsaw-puzzle-back/internal/session"
	"github.com/kyiku/jigsaw-puzzle-back/internal/storage"
)

const (
	s3Timeout      = 15 * time.Second
	bedrockTimeout = 10 * time.Second
	maxTokens      = 128
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			e.Logger.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(middleware.CORSMiddleware(cfg.AllowedOrigin))

	sessions := session.NewSessionStoreWithExpiry(cfg.SessionExpiry)
	games := game.NewRegistry()

	var puzzles *handler.PuzzleHandler
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Printf("Warning: AWS config unavailable, puzzle API disabled: %v", err)
	} else {
		images := storage.NewImageStore(
			storage.NewS3Client(s3.NewFromConfig(awsCfg), cfg.S3Bucket, s3Timeout),
			cfg.S3Bucket, cfg.CloudfrontDomain,
		)
		puzzles = handler.NewPuzzleHandler(sessions, images, games, cfg.Layout())

		if cfg.BedrockEnabled {
			congrats := ai.NewBedrockClient(
				ai.NewRuntimeClient(bedrockruntime.NewFromConfig(awsCfg), bedrockTimeout, maxTokens),
				cfg.AWSRegion,
			)
			congrats.EnableFallback(true)
			puzzles.SetCongratulator(congrats)
		}
	}

	limiter := middleware.NewRateLimiter(10, time.Minute)
	defer limiter.Stop()

	registerRoutes(e, routes{
		health:  handler.NewHealthHandler(sessions, games),
		ws:      handler.NewWebSocketHandler(sessions, games, cfg.AllowedOrigin, cfg.IdleTimeout),
		puzzles: puzzles,
		limiter: limiter,
	})

	if cfg.SessionExpiry > 0 {
		go sweepSessions(sessions, games, cfg.SessionExpiry/2)
	}

	for _, r := range e.Routes() {
		log.Printf("  %-6s %s", r.Method, r.Path)
	}
	log.Printf("Starting server on :%s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

type routes struct {
	health  *handler.HealthHandler
	ws      *handler.WebSocketHandler
	puzzles *handler.PuzzleHandler // nil when S3 is not configured
	limiter *middleware.RateLimiter
}

func registerRoutes(e *echo.Echo, r routes) {
	// root level for the ALB health check
	e.GET("/health", r.health.Check)
	e.GET("/ws", r.ws.Connect)

	api := e.Group("/api")
	api.GET("/health", r.health.Check)

	p := api.Group("/puzzle")
	if r.puzzles == nil {
		p.Any("/*", func(c echo.Context) error {
			return response.ErrorWithCode(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "画像ストレージが設定されていません")
		})
		return
	}
	p.POST("/start", r.puzzles.Start, r.limiter.Middleware())
	p.GET("/state", r.puzzles.State)
	p.POST("/replay", r.puzzles.Replay)
	p.GET("/preview", r.puzzles.Preview)
	p.POST("/share", r.puzzles.Share)
}

// sweepSessions drops expired sessions and the games they own.
func sweepSessions(sessions *session.SessionStore, games *game.Registry, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		for _, id := range sessions.Sweep() {
			games.Delete(id)
		}
	}
}
