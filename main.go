package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"todochat-api/api"
	"todochat-api/intent"
	"todochat-api/llm"
	"todochat-api/storage"
)

const (
	rateLimitWindow   = time.Minute
	rateLimitRequests = 10
	responseCacheTTL  = time.Minute
	responseCacheSize = 100
)

func main() {
	logger := newLogger(os.Getenv("DEBUG"))
	log.SetLevel(logger.GetLevel())

	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	todosTable := os.Getenv("TODOS_TABLE")
	if connStr == "" || todosTable == "" {
		log.Fatal("missing storage config")
	}
	store, err := storage.New(connStr, todosTable)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var todoStore api.Store = store
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			log.Fatalf("invalid REDIS_CONNECTION_STRING: %v", err)
		}
		ttl := time.Minute
		if v := os.Getenv("CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid CACHE_TTL: %v", err)
			}
			ttl = d
		}
		todoStore = storage.NewCache(store, redis.NewClient(redisOpts), ttl)
	}

	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	model := os.Getenv("OPENAI_MODEL")
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if model == "" {
		log.Fatal("missing OPENAI_MODEL")
	}
	if apiKey == "" && baseURL == "" {
		log.Fatal("missing OpenAI config: set OPENAI_API_KEY, or OPENAI_BASE_URL for a local model server")
	}
	if apiKey != "" {
		log.Infof("OpenAI API key loaded: %s (%d chars), model: %s", maskKey(apiKey), len(apiKey), model)
		if !strings.HasPrefix(apiKey, "sk-") {
			log.Warn("OPENAI_API_KEY does not start with \"sk-\", it may be incorrect")
		}
	} else {
		log.Infof("using local model server at %s, model: %s", baseURL, model)
	}

	completer := llm.New(apiKey, baseURL, model, logger)
	extractor := intent.NewExtractor(todoStore, logger)
	limiter := api.NewFixedWindowLimiter(rateLimitWindow, rateLimitRequests)
	respCache := api.NewResponseCache(responseCacheTTL, responseCacheSize)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.Register(e, todoStore, extractor, completer, limiter, respCache, logger)

	listenAddr := ":3001"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// newLogger builds the logger injected into every component, honoring the
// DEBUG env toggle.
func newLogger(debug string) *log.Logger {
	logger := log.New()
	if dbg, err := strconv.ParseBool(debug); err == nil && dbg {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// maskKey keeps enough of the key to recognize it in logs without exposing it.
func maskKey(key string) string {
	if len(key) <= 11 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
