package memory_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/foodineye/app/models"
	"github.com/shashiranjanraj/foodineye/app/repositories"
	"github.com/shashiranjanraj/foodineye/app/repositories/memory"
	"github.com/shashiranjanraj/foodineye/pkg/apperr"
	"github.com/shashiranjanraj/foodineye/pkg/auth"
)

var (
	_ repositories.Collection[models.User] = (*memory.Collection[models.User])(nil)
	_ repositories.Collection[models.Food] = (*memory.Collection[models.Food])(nil)
	_ repositories.Collection[models.User] = (*repositories.MongoCollection[models.User])(nil)
)

func TestDuplicateLoginIDRejected(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewUserRepository(memory.NewCollection[models.User]("id"))

	require.NoError(t, users.Create(ctx, &models.User{LoginID: "alice", Scope: auth.ScopeBuyer}))
	err := users.Create(ctx, &models.User{LoginID: "alice", Scope: auth.ScopeSeller})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestConcurrentSignupsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewUserRepository(memory.NewCollection[models.User]("id"))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if users.Create(ctx, &models.User{LoginID: "racer"}) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestFindByIDErrors(t *testing.T) {
	ctx := context.Background()
	foods := repositories.NewFoodRepository(memory.NewCollection[models.Food]())

	_, err := foods.FindByID(ctx, "zzz")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = foods.FindByID(ctx, "64b0c0ffee0000000000cafe")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFoodImageKeyRoundTrip(t *testing.T) {
	ctx := context.Background()
	foods := repositories.NewFoodRepository(memory.NewCollection[models.Food]())

	key := "ignored.jpg"
	food := &models.Food{StoreID: "s1", Name: "bibimbap", Price: 9000, ImageKey: &key}
	require.NoError(t, foods.Create(ctx, food))

	got, err := foods.FindByID(ctx, food.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, got.ImageKey, "created with a null image key")

	require.NoError(t, foods.UpdateField(ctx, food.ID.Hex(), "img_key", "new.jpg"))
	got, err = foods.FindByID(ctx, food.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, got.ImageKey)
	assert.Equal(t, "new.jpg", *got.ImageKey)
	assert.Equal(t, "bibimbap", got.Name)

	list, err := foods.FindByStore(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMenuLatest(t *testing.T) {
	ctx := context.Background()
	menus := repositories.NewMenuRepository(memory.NewCollection[models.Menu]())

	for i := 0; i < 3; i++ {
		require.NoError(t, menus.Create(ctx, &models.Menu{StoreID: "s1", Title: fmt.Sprintf("v%d", i)}))
	}
	require.NoError(t, menus.Create(ctx, &models.Menu{StoreID: "s2", Title: "other"}))

	latest, err := menus.Latest(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "v2", latest.Title)

	_, err = menus.Latest(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOrdersBetween(t *testing.T) {
	ctx := context.Background()
	orders := repositories.NewOrderRepository(memory.NewCollection[models.Order]())

	require.NoError(t, orders.Create(ctx, &models.Order{StoreID: "s1", Total: 100, Status: models.OrderOrdered}))

	now := time.Now()
	in, err := orders.Between(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, in, 1)

	out, err := orders.Between(ctx, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	users := repositories.NewUserRepository(memory.NewCollection[models.User]("id"))
	err := users.SetRefreshToken(context.Background(), "64b0c0ffee0000000000cafe", "tok")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReadsDuringUpdatesDoNotShareDocuments(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewUserRepository(memory.NewCollection[models.User]("id"))
	u := &models.User{LoginID: "alice", Scope: auth.ScopeBuyer}
	require.NoError(t, users.Create(ctx, u))
	id := u.Hex()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.NoError(t, users.SetRefreshToken(ctx, id, fmt.Sprintf("tok-%d-%d", w, j)))
			}
		}(w)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, err := users.FindByID(ctx, id)
				assert.NoError(t, err)
				assert.Equal(t, "alice", got.LoginID)
				_, err = users.FindByLoginID(ctx, "alice")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestOrderStatusMovesOnlyFromExpected(t *testing.T) {
	ctx := context.Background()
	orders := repositories.NewOrderRepository(memory.NewCollection[models.Order]())
	o := &models.Order{StoreID: "s1", Status: models.OrderOrdered}
	require.NoError(t, orders.Create(ctx, o))

	moved, err := orders.UpdateStatus(ctx, o.ID.Hex(), models.OrderAccepted, models.OrderCooking)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = orders.UpdateStatus(ctx, o.ID.Hex(), models.OrderOrdered, models.OrderAccepted)
	require.NoError(t, err)
	assert.True(t, moved)

	got, err := orders.FindByID(ctx, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, got.Status)

	moved, err = orders.UpdateStatus(ctx, "64b0c0ffee0000000000cafe", models.OrderOrdered, models.OrderAccepted)
	require.NoError(t, err)
	assert.False(t, moved)
}
