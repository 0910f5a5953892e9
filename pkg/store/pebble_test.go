package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

func openTestStore(t *testing.T) {
	t.Helper()
	if err := Open(t.TempDir()); err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestSetGetDelete(t *testing.T) {
	openTestStore(t)

	if err := Set("post:p1", []byte(`{"id":"p1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, err := Get("post:p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(b) != `{"id":"p1"}` {
		t.Fatalf("unexpected value: %s", b)
	}
	if err := Delete("post:p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := Get("post:p1"); err == nil {
		t.Fatal("expected not found after delete")
	}
	// deleting a missing key is a no-op
	if err := Delete("post:p1"); err != nil {
		t.Fatalf("double delete: %v", err)
	}
}

func TestScanPrefixOrderAndIsolation(t *testing.T) {
	openTestStore(t)

	for i := 0; i < 5; i++ {
		key := MsgKey("c1", int64(1000+i), uint64(i))
		if err := Set(key, []byte(fmt.Sprintf("m%d", i))); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	if err := Set(ChatKey("c1"), []byte("meta")); err != nil {
		t.Fatalf("set meta: %v", err)
	}
	if err := Set(MsgKey("c2", 1, 0), []byte("other")); err != nil {
		t.Fatalf("set other chat: %v", err)
	}

	recs, err := ScanPrefix(MsgScanPrefix("c1"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(recs))
	}
	for i, r := range recs {
		if string(r.Value) != fmt.Sprintf("m%d", i) {
			t.Fatalf("wrong order at %d: %s", i, r.Value)
		}
	}
}

func TestUpdateSerializesConcurrentWriters(t *testing.T) {
	openTestStore(t)

	key := "stats:u1"
	if err := Set(key, []byte("0")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := Update(key, func(cur []byte, found bool) ([]byte, error) {
				var n int
				if found {
					if err := json.Unmarshal(cur, &n); err != nil {
						return nil, err
					}
				}
				return json.Marshal(n + 1)
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	b, err := Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n != writers {
		t.Fatalf("lost updates: expected %d, got %d", writers, n)
	}
}

func TestUpdateNilDeletes(t *testing.T) {
	openTestStore(t)

	if err := Set("user:u1", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	err := Update("user:u1", func(cur []byte, found bool) ([]byte, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok, _ := Has("user:u1"); ok {
		t.Fatal("expected key deleted when update returns nil")
	}
}

func TestApplyBatchAtomicVisibility(t *testing.T) {
	openTestStore(t)

	wb := NewBatch()
	_ = wb.Set([]byte(ChatKey("c1")), []byte("meta"), nil)
	_ = wb.Set([]byte(MsgKey("c1", 1, 1)), []byte("joined"), nil)
	if err := ApplyBatch(wb); err != nil {
		t.Fatalf("apply: %v", err)
	}

	recs, err := ScanPrefix(ChatScanPrefix("c1"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected both batch writes visible, got %d", len(recs))
	}
}

func TestDeletePrefixCascade(t *testing.T) {
	openTestStore(t)

	if err := Set(ChatKey("c1"), []byte("meta")); err != nil {
		t.Fatalf("set: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := Set(MsgKey("c1", int64(i), uint64(i)), []byte("m")); err != nil {
			t.Fatalf("set msg: %v", err)
		}
	}
	if err := Set(ChatKey("c2"), []byte("other")); err != nil {
		t.Fatalf("set other: %v", err)
	}

	n, err := DeletePrefix(ChatScanPrefix("c1"))
	if err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 records deleted, got %d", n)
	}
	if ok, _ := Has(ChatKey("c2")); !ok {
		t.Fatal("unrelated chat must survive cascade")
	}
}

func TestIsMetaKey(t *testing.T) {
	if !IsMetaKey(ChatKey("abc")) {
		t.Fatal("chat key must be a meta key")
	}
	if IsMetaKey(MsgKey("abc", 1, 1)) {
		t.Fatal("message key must not be a meta key")
	}
}
