package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppPort       = "8080"
	defaultAppEnv        = "local"
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDB       = "FIE_DB"
	defaultStoreDriver   = "mongo"
	defaultRedisAddr     = "localhost:6379"
	defaultJWTSecret     = "change-me-in-production"
	defaultAccessTTL     = 30 * time.Minute
	defaultRefreshTTL    = 14 * 24 * time.Hour
	defaultCacheTTL      = 5 * time.Minute
	defaultImagesDir     = "images"
	defaultImageMaxDim   = 1000
	defaultJPEGQuality   = 85
	defaultImageMaxBytes = 10 << 20
	defaultImageMaxPix   = 50_000_000
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges defaults, config/app.json, .env and the process environment,
// in that order of precedence (later wins). Safe to call repeatedly.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":      defaultAppEnv,
		"APP_PORT":     defaultAppPort,
		"MONGO_URI":    defaultMongoURI,
		"MONGO_DB":     defaultMongoDB,
		"STORE_DRIVER": defaultStoreDriver,
		"REDIS_ADDR":   defaultRedisAddr,
		"JWT_SECRET":   defaultJWTSecret,
		"IMAGES_DIR":   defaultImagesDir,
		"IMAGE_DISK":   "local",
	}
}

func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }

// IsProduction reports whether APP_ENV names a production deployment.
func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

// ── Document store ───────────────────────────────────────────────────────────

func MongoURI() string      { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDatabase() string { _ = Load(); return get("MONGO_DB", defaultMongoDB) }

// StoreDriver selects the repository backend: "mongo" (default) or "memory".
func StoreDriver() string {
	_ = Load()
	switch d := strings.ToLower(get("STORE_DRIVER", defaultStoreDriver)); d {
	case "mongo", "memory":
		return d
	default:
		return defaultStoreDriver
	}
}

// LogMongoCollection names the collection that receives a copy of every log
// record. Empty disables the sink.
func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLLECTION", "") }

// LogRetention is how long sink records are kept; 0 keeps them forever.
func LogRetention() time.Duration { return Duration("LOG_RETENTION", 0) }

// ── Cache ────────────────────────────────────────────────────────────────────

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }
func CacheTTL() time.Duration {
	return Duration("CACHE_TTL", defaultCacheTTL)
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func JWTSecret() string { _ = Load(); return get("JWT_SECRET", defaultJWTSecret) }

func AccessTokenSecret() string  { _ = Load(); return get("AUTH_ACCESS_SECRET", JWTSecret()) }
func RefreshTokenSecret() string { _ = Load(); return get("AUTH_REFRESH_SECRET", JWTSecret()) }

// DefaultSecrets lists the signing-secret keys that still resolve to the
// built-in placeholder.
func DefaultSecrets() []string {
	var out []string
	for key, v := range map[string]string{
		"AUTH_ACCESS_SECRET":  AccessTokenSecret(),
		"AUTH_REFRESH_SECRET": RefreshTokenSecret(),
	} {
		if v == defaultJWTSecret {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func AccessTokenTTL() time.Duration  { return Duration("AUTH_ACCESS_TTL", defaultAccessTTL) }
func RefreshTokenTTL() time.Duration { return Duration("AUTH_REFRESH_TTL", defaultRefreshTTL) }

// BcryptCost returns 0 when unset so callers fall back to bcrypt.DefaultCost.
func BcryptCost() int { return Int("AUTH_BCRYPT_COST", 0) }

// ── Images ───────────────────────────────────────────────────────────────────

func ImagesDir() string      { _ = Load(); return get("IMAGES_DIR", defaultImagesDir) }
func ImageDisk() string      { _ = Load(); return get("IMAGE_DISK", "local") }
func ImageMaxDimension() int { return Int("IMAGE_MAX_DIMENSION", defaultImageMaxDim) }
func ImageJPEGQuality() int  { return Int("IMAGE_JPEG_QUALITY", defaultJPEGQuality) }
func ImageMaxBytes() int64   { return int64(Int("IMAGE_MAX_BYTES", defaultImageMaxBytes)) }
func ImageMaxPixels() int64  { return int64(Int("IMAGE_MAX_PIXELS", defaultImageMaxPix)) }

// ── Object storage ───────────────────────────────────────────────────────────

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── HTTP ─────────────────────────────────────────────────────────────────────

func RateLimitRPS() int   { return Int("RATE_LIMIT_RPS", 20) }
func RateLimitBurst() int { return Int("RATE_LIMIT_BURST", 40) }

// CORSOrigins returns the allowed origins; "*" when unset.
func CORSOrigins() []string {
	_ = Load()
	raw := get("CORS_ORIGINS", "*")
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil && !os.IsNotExist(err) {
		return err
	}

	if err := mergeDotEnv(envPath, loaded); err != nil && !os.IsNotExist(err) {
		return err
	}

	for key := range knownKeys(loaded) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64, bool:
			s = fmt.Sprint(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return statErr
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	for k, v := range env {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return nil
}

// knownKeys is every key that the process environment may override: the ones
// already loaded plus every key read through a getter.
func knownKeys(loaded map[string]string) map[string]struct{} {
	keys := map[string]struct{}{}
	for k := range loaded {
		keys[k] = struct{}{}
	}
	for _, k := range envKeys {
		keys[k] = struct{}{}
	}
	return keys
}

var envKeys = []string{
	"APP_ENV", "APP_PORT", "MONGO_URI", "MONGO_DB", "STORE_DRIVER", "LOG_MONGO_COLLECTION", "LOG_RETENTION",
	"REDIS_ADDR", "REDIS_PASSWORD", "CACHE_TTL",
	"JWT_SECRET", "AUTH_ACCESS_SECRET", "AUTH_REFRESH_SECRET", "AUTH_ACCESS_TTL", "AUTH_REFRESH_TTL", "AUTH_BCRYPT_COST",
	"IMAGES_DIR", "IMAGE_DISK", "IMAGE_MAX_DIMENSION", "IMAGE_JPEG_QUALITY", "IMAGE_MAX_BYTES", "IMAGE_MAX_PIXELS",
	"S3_BUCKET", "S3_REGION", "S3_KEY", "S3_SECRET", "S3_ENDPOINT", "S3_URL",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ORIGINS", "MAX_BODY_BYTES",
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Int reads key as an integer, returning fallback when unset or malformed.
func Int(key string, fallback int) int {
	_ = Load()
	n, err := strconv.Atoi(get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Duration reads key as a time.Duration ("15m", "336h"). A bare integer is
// taken as seconds.
func Duration(key string, fallback time.Duration) time.Duration {
	_ = Load()
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// Set overrides a key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
