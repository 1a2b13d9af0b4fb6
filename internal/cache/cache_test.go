package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKeyIsDeterministic(t *testing.T) {
	a := Key("product_finder", []string{"Cheese Sandwich", "Milkshake"})
	b := Key("product_finder", []string{"Cheese Sandwich", "Milkshake"})
	if a != b {
		t.Errorf("identical inputs produced different keys: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "product_finder:") {
		t.Errorf("key missing purpose prefix: %s", a)
	}
}

func TestKeyVariesWithInput(t *testing.T) {
	base := Key("budgeting", map[string]any{"budget": 50.0})

	if got := Key("budgeting", map[string]any{"budget": 51.0}); got == base {
		t.Error("different inputs produced the same key")
	}
	if got := Key("product_finder", map[string]any{"budget": 50.0}); got == base {
		t.Error("different prefixes produced the same key")
	}
}

func TestKeyCanonicalizesMapOrder(t *testing.T) {
	a := Key("budgeting", map[string]any{"budget": 50.0, "products": []string{"Milk"}})
	b := Key("budgeting", map[string]any{"products": []string{"Milk"}, "budget": 50.0})
	if a != b {
		t.Errorf("map key order changed the cache key: %s vs %s", a, b)
	}
}

func TestGetSetRoundtrip(t *testing.T) {
	c, err := OpenInMemory(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := Key("test", "value")
	if _, ok := c.Get(key); ok {
		t.Fatal("unexpected hit before set")
	}

	c.Set(key, []byte(`{"hello":"world"}`))

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if string(got) != `{"hello":"world"}` {
		t.Errorf("got %s", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	c, err := OpenInMemory(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, ok := c.Get("nope:deadbeef"); ok {
		t.Error("missing key reported as hit")
	}
}
