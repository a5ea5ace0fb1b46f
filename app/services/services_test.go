package services_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/app/repositories/memory"
	"github.com/shashiranjanraj/foodineye/app/services"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
	"github.com/shashiranjanraj/foodineye/pkg/cache"
	"github.com/shashiranjanraj/foodineye/pkg/event"
	"github.com/shashiranjanraj/foodineye/pkg/imageproc"
	"github.com/shashiranjanraj/foodineye/pkg/storage"
)

type fixture struct {
	ctx    context.Context
	tokens *auth.TokenManager
	disk   *storage.LocalDisk
	events *event.Dispatcher
	cache  *cache.Memory

	userRepo  *repositories.UserRepository
	storeRepo *repositories.StoreRepository
	foodRepo  *repositories.FoodRepository
	orderRepo *repositories.OrderRepository

	auth      *services.AuthService
	users     *services.UserService
	stores    *services.StoreService
	menus     *services.MenuService
	foods     *services.FoodService
	orders    *services.OrderService
	analytics *services.AnalyticsService
	objects   *services.ObjectStorageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	disk, err := storage.NewLocalDisk(t.TempDir(), "/images")
	require.NoError(t, err)

	f := &fixture{
		ctx:       context.Background(),
		tokens:    auth.NewTokenManager(auth.TokenConfig{AccessSecret: "access", RefreshSecret: "refresh"}),
		disk:      disk,
		events:    event.New(),
		cache:     cache.NewMemory(),
		userRepo:  repositories.NewUserRepository(memory.NewCollection[models.User]("id")),
		storeRepo: repositories.NewStoreRepository(memory.NewCollection[models.Store]()),
		foodRepo:  repositories.NewFoodRepository(memory.NewCollection[models.Food]()),
		orderRepo: repositories.NewOrderRepository(memory.NewCollection[models.Order]()),
	}
	menuRepo := repositories.NewMenuRepository(memory.NewCollection[models.Menu]())
	hasher := auth.NewHasher(4)
	files := storage.NewFileStore(disk, nil)

	f.auth = services.NewAuthService(f.userRepo, hasher)
	f.users = services.NewUserService(f.auth, f.userRepo, f.storeRepo, hasher, f.tokens)
	f.stores = services.NewStoreService(f.storeRepo, f.cache, time.Minute)
	f.menus = services.NewMenuService(menuRepo, f.storeRepo, f.foodRepo, f.cache, time.Minute)
	f.foods = services.NewFoodService(f.foodRepo, f.storeRepo, imageproc.New(imageproc.Options{MaxDimension: 100}), files)
	f.orders = services.NewOrderService(f.orderRepo, f.foodRepo, f.userRepo, f.events)
	f.analytics = services.NewAnalyticsService(f.orderRepo)
	f.objects = services.NewObjectStorageService(files)
	return f
}

func (f *fixture) store(t *testing.T, name string) *models.Store {
	t.Helper()
	s, err := f.stores.Create(f.ctx, services.StoreInput{Name: name})
	require.NoError(t, err)
	return s
}

func (f *fixture) food(t *testing.T, storeID, name string, price int) *models.Food {
	t.Helper()
	food, err := f.foods.Create(f.ctx, storeID, services.FoodInput{Name: name, Price: price})
	require.NoError(t, err)
	return food
}

func (f *fixture) buyer(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.users.SignupBuyer(f.ctx, services.BuyerSignup{ID: id, PW: "pw1234", Name: id, Gender: "female", Age: 30})
	require.NoError(t, err)
	return u
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
