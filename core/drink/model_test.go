package drink

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDrink() *Drink {
	return &Drink{
		ID:    7,
		Title: "flat white",
		Recipe: Recipe{
			{Name: "espresso", Color: "brown", Parts: 1},
			{Name: "milk", Color: "white", Parts: 2},
		},
	}
}

func TestShortOmitsNames(t *testing.T) {
	j, err := json.Marshal(testDrink().Short())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"title": "flat white",
		"recipe": [{"color": "brown", "parts": 1}, {"color": "white", "parts": 2}]
	}`, string(j))
}

func TestLong(t *testing.T) {
	j, err := json.Marshal(testDrink().Long())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"title": "flat white",
		"recipe": [
			{"name": "espresso", "color": "brown", "parts": 1},
			{"name": "milk", "color": "white", "parts": 2}
		]
	}`, string(j))
}

func TestEmptyRecipeViews(t *testing.T) {
	d := &Drink{ID: 1, Title: "nothing"}

	j, err := json.Marshal(d.Short())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 1, "title": "nothing", "recipe": []}`, string(j))

	j, err = json.Marshal(d.Long())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 1, "title": "nothing", "recipe": []}`, string(j))
}

func TestLongDoesNotAlias(t *testing.T) {
	d := testDrink()
	long := d.Long()
	long.Recipe[0].Name = "decaf"
	assert.Equal(t, "espresso", d.Recipe[0].Name)
}

func TestRecipeUnmarshal(t *testing.T) {
	testCases := []struct {
		name     string
		data     string
		expected Recipe
	}{
		{"array", `[{"name":"Espresso","color":"brown","parts":1}]`, Recipe{{"Espresso", "brown", 1}}},
		{"single object", ` {"name":"water","color":"blue","parts":1}`, Recipe{{"water", "blue", 1}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var r Recipe
			require.NoError(t, json.Unmarshal([]byte(tc.data), &r))
			assert.Equal(t, tc.expected, r)
		})
	}

	var r Recipe
	require.NoError(t, json.Unmarshal([]byte(`[]`), &r))
	assert.Empty(t, r)

	assert.Error(t, json.Unmarshal([]byte(`"espresso"`), &r))
}

func TestRecipeScan(t *testing.T) {
	var r Recipe
	require.NoError(t, r.Scan(`{"name":"water","color":"blue","parts":1}`))
	assert.Equal(t, Recipe{{"water", "blue", 1}}, r)

	require.NoError(t, r.Scan([]byte(`[{"name":"milk","color":"white","parts":2}]`)))
	assert.Equal(t, Recipe{{"milk", "white", 2}}, r)

	require.NoError(t, r.Scan(nil))
	assert.Equal(t, Recipe{}, r)

	assert.Error(t, r.Scan(42))
}

func TestRecipeValue(t *testing.T) {
	v, err := Recipe(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = testDrink().Recipe.Value()
	require.NoError(t, err)
	s, ok := v.(string)
	require.True(t, ok)
	assert.JSONEq(t, `[{"name":"espresso","color":"brown","parts":1},{"name":"milk","color":"white","parts":2}]`, s)
}
