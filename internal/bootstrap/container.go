// Package bootstrap builds the process-wide service graph once at start-up.
// Handlers receive it explicitly; nothing here is a package-level global.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/app/repositories/memory"
	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/config"
	"github.com/shashiranjanraj/foodineye/database/indexes"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/cache"
	"github.com/shashiranjanraj/foodineye/pkg/database"
	"github.com/shashiranjanraj/foodineye/pkg/event"
	"github.com/shashiranjanraj/foodineye/pkg/imageproc"
	"github.com/shashiranjanraj/foodineye/pkg/logger"
	"github.com/shashiranjanraj/foodineye/pkg/metrics"
	"github.com/shashiranjanraj/foodineye/pkg/storage"
	"github.com/shashiranjanraj/foodineye/pkg/ws"
)

// Collections is the document store behind the repositories.
type Collections struct {
	Users  repositories.Collection[models.User]
	Stores repositories.Collection[models.Store]
	Menus  repositories.Collection[models.Menu]
	Foods  repositories.Collection[models.Food]
	Orders repositories.Collection[models.Order]
}

// MemoryCollections returns empty in-process collections with the login id
// unique, as the Mongo index makes it.
func MemoryCollections() Collections {
	return Collections{
		Users:  memory.NewCollection[models.User]("id"),
		Stores: memory.NewCollection[models.Store](),
		Menus:  memory.NewCollection[models.Menu](),
		Foods:  memory.NewCollection[models.Food](),
		Orders: memory.NewCollection[models.Order](),
	}
}

// MongoCollections binds the repositories to db.
func MongoCollections(db *database.Mongo) Collections {
	return Collections{
		Users:  repositories.NewMongoCollection[models.User](db.Collection(database.UserCollection)),
		Stores: repositories.NewMongoCollection[models.Store](db.Collection(database.StoreCollection)),
		Menus:  repositories.NewMongoCollection[models.Menu](db.Collection(database.MenuCollection)),
		Foods:  repositories.NewMongoCollection[models.Food](db.Collection(database.FoodCollection)),
		Orders: repositories.NewMongoCollection[models.Order](db.Collection(database.OrderCollection)),
	}
}

// Deps is everything Build needs from the outside world.
type Deps struct {
	Collections Collections
	Cache       cache.Store
	CacheTTL    time.Duration
	ImageDisk   storage.Disk
	ObjectDisk  storage.Disk
	Tokens      *auth.TokenManager
	Hasher      *auth.Hasher
	Images      *imageproc.Processor
	Log         *slog.Logger
}

// Container holds the wired services plus the handles that need closing.
type Container struct {
	Log    *slog.Logger
	Tokens *auth.TokenManager
	Events *event.Dispatcher
	Hub    *ws.Hub

	Auth      *services.AuthService
	Users     *services.UserService
	Stores    *services.StoreService
	Menus     *services.MenuService
	Foods     *services.FoodService
	Orders    *services.OrderService
	Analytics *services.AnalyticsService
	Objects   *services.ObjectStorageService

	// MaxUpload caps multipart image uploads.
	MaxUpload int64

	Mongo *database.Mongo
	Redis *cache.Redis

	closers []func(context.Context) error
}

// Build wires services over d. The returned container owns no connections.
func Build(d Deps) *Container {
	if d.Log == nil {
		d.Log = logger.L
	}
	if d.ObjectDisk == nil {
		d.ObjectDisk = d.ImageDisk
	}

	userRepo := repositories.NewUserRepository(d.Collections.Users)
	storeRepo := repositories.NewStoreRepository(d.Collections.Stores)
	menuRepo := repositories.NewMenuRepository(d.Collections.Menus)
	foodRepo := repositories.NewFoodRepository(d.Collections.Foods)
	orderRepo := repositories.NewOrderRepository(d.Collections.Orders)

	c := &Container{
		Log:       d.Log,
		Tokens:    d.Tokens,
		Events:    event.New(),
		Hub:       ws.NewHub(d.Log),
		MaxUpload: config.ImageMaxBytes(),
	}
	c.Hub.OnCountChange = func(n int) { metrics.FeedClients.Set(float64(n)) }
	services.ListenOrderFeed(c.Events, c.Hub, d.Log)

	c.Auth = services.NewAuthService(userRepo, d.Hasher)
	c.Users = services.NewUserService(c.Auth, userRepo, storeRepo, d.Hasher, d.Tokens)
	c.Stores = services.NewStoreService(storeRepo, d.Cache, d.CacheTTL)
	c.Menus = services.NewMenuService(menuRepo, storeRepo, foodRepo, d.Cache, d.CacheTTL)
	c.Foods = services.NewFoodService(foodRepo, storeRepo, d.Images, storage.NewFileStore(d.ImageDisk, d.Log))
	c.Orders = services.NewOrderService(orderRepo, foodRepo, userRepo, c.Events)
	c.Analytics = services.NewAnalyticsService(orderRepo)
	c.Objects = services.NewObjectStorageService(storage.NewFileStore(d.ObjectDisk, d.Log))
	return c
}

// TokenManager builds the token manager from config.
func TokenManager() *auth.TokenManager {
	return auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  config.AccessTokenSecret(),
		RefreshSecret: config.RefreshTokenSecret(),
		AccessTTL:     config.AccessTokenTTL(),
		RefreshTTL:    config.RefreshTokenTTL(),
	})
}

// ImageProcessor builds the image processor from config.
func ImageProcessor() *imageproc.Processor {
	return imageproc.New(imageproc.Options{
		MaxDimension: config.ImageMaxDimension(),
		Quality:      config.ImageJPEGQuality(),
		MaxBytes:     config.ImageMaxBytes(),
		MaxPixels:    config.ImageMaxPixels(),
	})
}

// New connects to everything config names and builds the container.
// With STORE_DRIVER=memory no database or cache server is contacted.
// checkSecrets refuses to boot a production process that signs tokens with
// the placeholder secret, and warns everywhere else.
func checkSecrets(log *slog.Logger) error {
	keys := config.DefaultSecrets()
	if len(keys) == 0 {
		return nil
	}
	if config.IsProduction() {
		return fmt.Errorf("config: %s use the placeholder secret; set JWT_SECRET", strings.Join(keys, ", "))
	}
	log.Warn("token signing uses the placeholder secret; set JWT_SECRET before deploying", "keys", keys)
	return nil
}

func New(ctx context.Context) (*Container, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logger.Setup(config.AppEnv())
	if err := checkSecrets(log); err != nil {
		return nil, err
	}
	ws.SetCheckOrigin(ws.AllowOrigins(config.CORSOrigins()))

	var (
		closers []func(context.Context) error
		cols    Collections
		mongoDB *database.Mongo
		rdb     *cache.Redis
		store   cache.Store
	)
	fail := func(err error) (*Container, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i](context.Background())
		}
		return nil, err
	}

	switch config.StoreDriver() {
	case "memory":
		log.Warn("using in-memory document store; data is lost on exit")
		cols = MemoryCollections()
		store = cache.NewMemory()
	default:
		m, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
		if err != nil {
			return fail(err)
		}
		mongoDB = m
		closers = append(closers, m.Close)

		if _, err := indexes.EnsureAll(ctx, m.DB); err != nil {
			return fail(err)
		}
		cols = MongoCollections(m)

		if name := config.LogMongoCollection(); name != "" {
			sink := logger.NewMongoHandler(ctx, m.Collection(name), logger.MongoOptions{Retention: config.LogRetention()})
			log = logger.Setup(config.AppEnv(), sink)
			closers = append(closers, func(context.Context) error { sink.Close(); return nil })
		}

		r, err := cache.ConnectRedis(ctx, config.RedisAddr(), config.RedisPassword())
		if err != nil {
			log.Warn("redis unavailable, caching in memory", "addr", config.RedisAddr(), "error", err)
			store = cache.NewMemory()
		} else {
			rdb, store = r, r
			closers = append(closers, func(context.Context) error { return r.Close() })
		}
	}

	imageDisk, err := storage.Open(ctx, config.ImageDisk())
	if err != nil {
		return fail(err)
	}
	objectDisk := imageDisk
	if config.StorageS3Bucket() != "" {
		if objectDisk, err = storage.OpenS3(ctx); err != nil {
			return fail(err)
		}
	} else {
		log.Warn("S3_BUCKET not set; object listing reads the image disk")
	}

	c := Build(Deps{
		Collections: cols,
		Cache:       store,
		CacheTTL:    config.CacheTTL(),
		ImageDisk:   imageDisk,
		ObjectDisk:  objectDisk,
		Tokens:      TokenManager(),
		Hasher:      auth.NewHasher(config.BcryptCost()),
		Images:      ImageProcessor(),
		Log:         log,
	})
	c.Mongo, c.Redis, c.closers = mongoDB, rdb, closers
	return c, nil
}

// Close releases connections in reverse order of opening.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
