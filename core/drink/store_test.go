package drink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/coffeeshop/core/csql"
)

var testStore *Store

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "drink")
	if err != nil {
		panic(err)
	}
	db, err := csql.OpenSQLite(filepath.Join(dir, "drink.db"))
	if err != nil {
		panic(err)
	}
	testStore = NewStore(db)

	code := m.Run()
	db.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func resetStore(t *testing.T) {
	t.Helper()
	require.NoError(t, testStore.Reset(context.Background()))
}

func TestStoreLifecycle(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	drinks, err := testStore.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, drinks)
	assert.Empty(t, drinks)

	d := &Drink{Title: "espresso", Recipe: Recipe{{Name: "Espresso", Color: "brown", Parts: 1}}}
	require.NoError(t, testStore.Insert(ctx, d))
	assert.NotZero(t, d.ID)

	found, err := testStore.Find(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d, found)

	found.Title = "double espresso"
	found.Recipe = Recipe{{Name: "Espresso", Color: "brown", Parts: 2}}
	require.NoError(t, testStore.Update(ctx, found))

	again, err := testStore.Find(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "double espresso", again.Title)
	assert.Equal(t, 2, again.Recipe[0].Parts)

	require.NoError(t, testStore.Delete(ctx, again))
	_, err = testStore.Find(ctx, d.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	// deleting twice reports not found
	err = testStore.Delete(ctx, again)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreListOrder(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	for _, title := range []string{"latte", "mocha", "cortado"} {
		require.NoError(t, testStore.Insert(ctx, &Drink{Title: title, Recipe: Recipe{{Name: title, Color: "brown", Parts: 1}}}))
	}
	drinks, err := testStore.List(ctx)
	require.NoError(t, err)
	require.Len(t, drinks, 3)
	assert.Equal(t, "latte", drinks[0].Title)
	assert.Equal(t, "mocha", drinks[1].Title)
	assert.Equal(t, "cortado", drinks[2].Title)
	assert.Less(t, drinks[0].ID, drinks[1].ID)
}

func TestStoreUniqueTitle(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	require.NoError(t, testStore.Insert(ctx, &Drink{Title: "latte", Recipe: Recipe{{Name: "milk", Color: "white", Parts: 3}}}))
	err := testStore.Insert(ctx, &Drink{Title: "latte", Recipe: Recipe{{Name: "milk", Color: "white", Parts: 1}}})
	assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

	other := &Drink{Title: "mocha", Recipe: Recipe{{Name: "chocolate", Color: "brown", Parts: 1}}}
	require.NoError(t, testStore.Insert(ctx, other))
	other.Title = "latte"
	err = testStore.Update(ctx, other)
	assert.True(t, errors.Is(err, ErrConflict), "got %v", err)
}

func TestStoreUpdateUnknown(t *testing.T) {
	resetStore(t)
	err := testStore.Update(context.Background(), &Drink{ID: 4711, Title: "ghost", Recipe: Recipe{}})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreSeed(t *testing.T) {
	resetStore(t)
	ctx := context.Background()

	d, err := testStore.Seed(ctx)
	require.NoError(t, err)

	drinks, err := testStore.List(ctx)
	require.NoError(t, err)
	require.Len(t, drinks, 1)
	assert.Equal(t, d.ID, drinks[0].ID)
	assert.Equal(t, Recipe{{Name: "water", Color: "blue", Parts: 1}}, drinks[0].Recipe)
}
