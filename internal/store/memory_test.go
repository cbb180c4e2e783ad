package store

import (
	"context"
	"reflect"
	"testing"
)

type testDoc struct {
	Name string `json:"name"`
}

func TestMemorySetAssignsID(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	id, err := st.Set(ctx, "public/movies", "", testDoc{Name: "first"})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	doc, err := st.GetOne(ctx, "public/movies", id)
	if err != nil {
		t.Fatalf("GetOne: %v", err)
	}
	var got testDoc
	if err := Decode(doc, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Name != "first" {
		t.Errorf("got %q, want %q", got.Name, "first")
	}
}

func TestMemoryGetOneNotFound(t *testing.T) {
	st := NewMemory()
	if _, err := st.GetOne(context.Background(), "public/movies", "missing"); err != ErrNotFound {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryUpsertKeepsPosition(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := st.Set(ctx, "col", name, testDoc{Name: name}); err != nil {
			t.Fatalf("Set %s: %v", name, err)
		}
	}
	if _, err := st.Set(ctx, "col", "b", testDoc{Name: "b2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	docs, err := st.GetAll(ctx, "col")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	var order []string
	for _, doc := range docs {
		order = append(order, doc.ID)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	var got testDoc
	if err := Decode(docs[1], &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Name != "b2" {
		t.Errorf("upsert did not replace data: got %q", got.Name)
	}
}

func TestMemoryDeleteIdempotent(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	if err := st.Delete(ctx, "col", "absent"); err != nil {
		t.Errorf("deleting an absent document should succeed, got %v", err)
	}

	if _, err := st.Set(ctx, "col", "x", testDoc{Name: "x"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Delete(ctx, "col", "x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, "col", "x"); err != nil {
		t.Errorf("second delete should succeed, got %v", err)
	}
}

func TestMemorySubscribeDeliversSnapshots(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	if _, err := st.Set(ctx, "col", "a", testDoc{Name: "a"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var snaps []Snapshot
	sub := st.Subscribe("col", func(snap Snapshot) {
		snaps = append(snaps, snap)
	})
	defer sub.Close()

	if len(snaps) != 1 {
		t.Fatalf("expected the initial snapshot, got %d deliveries", len(snaps))
	}
	if len(snaps[0].Docs) != 1 || snaps[0].Docs[0].ID != "a" {
		t.Errorf("initial snapshot = %+v", snaps[0].Docs)
	}

	if _, err := st.Set(ctx, "col", "b", testDoc{Name: "b"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected a delivery after Set, got %d", len(snaps))
	}
	if len(snaps[1].Docs) != 2 {
		t.Errorf("snapshot after Set has %d docs, want 2", len(snaps[1].Docs))
	}

	if err := st.Delete(ctx, "col", "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected a delivery after Delete, got %d", len(snaps))
	}
	if len(snaps[2].Docs) != 1 || snaps[2].Docs[0].ID != "b" {
		t.Errorf("snapshot after Delete = %+v", snaps[2].Docs)
	}
}

func TestMemorySubscribeNoOpDeleteNotPublished(t *testing.T) {
	st := NewMemory()

	deliveries := 0
	sub := st.Subscribe("col", func(Snapshot) { deliveries++ })
	defer sub.Close()

	if err := st.Delete(context.Background(), "col", "absent"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deliveries != 1 {
		t.Errorf("no-op delete should not publish, got %d deliveries", deliveries)
	}
}

func TestMemorySubscriptionCloseStopsDelivery(t *testing.T) {
	st := NewMemory()

	deliveries := 0
	sub := st.Subscribe("col", func(Snapshot) { deliveries++ })
	sub.Close()

	if _, err := st.Set(context.Background(), "col", "a", testDoc{Name: "a"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if deliveries != 1 {
		t.Errorf("closed subscription received a delivery (total %d)", deliveries)
	}
}

func TestMemorySubscriptionsAreIndependentPerPath(t *testing.T) {
	st := NewMemory()

	colDeliveries := 0
	sub := st.Subscribe("col", func(Snapshot) { colDeliveries++ })
	defer sub.Close()

	if _, err := st.Set(context.Background(), "other", "a", testDoc{Name: "a"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if colDeliveries != 1 {
		t.Errorf("write to another collection leaked: %d deliveries", colDeliveries)
	}
}

func TestDecodeAllRejectsMalformed(t *testing.T) {
	docs := []Document{
		{ID: "ok", Data: []byte(`{"name":"ok"}`)},
		{ID: "bad", Data: []byte(`{`)},
	}
	if _, err := DecodeAll[testDoc](docs); err == nil {
		t.Error("expected an error for malformed document data")
	}
}
