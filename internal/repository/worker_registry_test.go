package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mfagundes/taskfan/pkg/domain"
)

func TestRegisterAndSnapshotOrder(t *testing.T) {
	reg := NewWorkerRegistry(nil)

	for i, label := range []string{"c", "a", "b"} {
		if _, err := reg.Register(label, fmt.Sprintf("http://host-%d:28080", i), domain.SourceRegister); err != nil {
			t.Fatalf("register %s: %v", label, err)
		}
	}

	snap := reg.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 workers, got %d", len(snap))
	}
	for i, want := range []string{"c", "a", "b"} {
		if snap[i].Label != want {
			t.Errorf("snapshot[%d] = %s, want %s (insertion order)", i, snap[i].Label, want)
		}
	}
}

func TestRegisterSameLabelTwiceKeepsOneRecord(t *testing.T) {
	reg := NewWorkerRegistry(nil)

	if _, err := reg.Register("mac-1", "http://old:1", domain.SourceRegister); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("other", "http://other:1", domain.SourceRegister); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("mac-1", "http://new:2/", domain.SourceRegister); err != nil {
		t.Fatal(err)
	}

	snap := reg.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 workers after re-registration, got %d", len(snap))
	}
	if snap[0].Label != "mac-1" || snap[0].URL != "http://new:2" {
		t.Errorf("expected mac-1 to keep position and take latest URL, got %+v", snap[0])
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewWorkerRegistry(nil)

	tests := []struct {
		name  string
		label string
		url   string
	}{
		{"empty label", "", "http://x:1"},
		{"empty url", "w", ""},
		{"bad scheme", "w", "ftp://x:1"},
		{"slashes only", "w", "///"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := reg.Register(tt.label, tt.url, domain.SourceRegister); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if reg.Len() != 0 {
		t.Errorf("invalid registrations must not be stored, have %d", reg.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	reg := NewWorkerRegistry(nil)
	if _, err := reg.Register("w1", "http://w1:1", domain.SourceEnv); err != nil {
		t.Fatal(err)
	}

	snap := reg.Snapshot()
	snap[0].URL = "http://mutated:9"

	if got := reg.Snapshot()[0].URL; got != "http://w1:1" {
		t.Errorf("mutating a snapshot leaked into the registry: %s", got)
	}
}

func TestTouchAndEvict(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reg := NewWorkerRegistry(func() time.Time { return base })

	if _, err := reg.Register("w1", "http://w1:1", domain.SourceEnv); err != nil {
		t.Fatal(err)
	}
	reg.Touch("w1", base.Add(5*time.Second))
	if got := reg.Snapshot()[0].LastSeenAt; !got.Equal(base.Add(5 * time.Second)) {
		t.Errorf("lastSeenAt not refreshed: %v", got)
	}

	// Touch never moves lastSeenAt backwards.
	reg.Touch("w1", base.Add(2*time.Second))
	if got := reg.Snapshot()[0].LastSeenAt; !got.Equal(base.Add(5 * time.Second)) {
		t.Errorf("touch moved lastSeenAt backwards: %v", got)
	}

	if !reg.Evict("w1") {
		t.Error("expected eviction of existing worker")
	}
	if reg.Evict("w1") {
		t.Error("expected second eviction to report absence")
	}
	if reg.Len() != 0 {
		t.Errorf("registry should be empty, has %d", reg.Len())
	}
}

func TestConcurrentRegisterAndSnapshot(t *testing.T) {
	reg := NewWorkerRegistry(nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = reg.Register(fmt.Sprintf("w-%d", i%8), fmt.Sprintf("http://w-%d:1", i), domain.SourceRegister)
		}(i)
		go func() {
			defer wg.Done()
			for _, rec := range reg.Snapshot() {
				if rec.Label == "" || rec.URL == "" {
					t.Error("snapshot observed a half-written record")
				}
			}
		}()
	}
	wg.Wait()

	if reg.Len() != 8 {
		t.Errorf("expected 8 distinct labels, got %d", reg.Len())
	}
}

func TestBootstrap(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantCount  int
		wantFirst  string
		wantLabels []string
	}{
		{"empty", "", 0, "", nil},
		{"csv", "http://a:1, http://b:2", 2, "http://a:1", []string{"worker-1", "worker-2"}},
		{"json", `[{"label":"mac-1","url":"http://a:1/"},{"name":"mac-2","url":"http://b:2"}]`, 2, "http://a:1", []string{"mac-1", "mac-2"}},
		{"json skips invalid", `[{"label":"x","url":"nope"},{"label":"y","url":"http://ok:1"}]`, 1, "http://ok:1", []string{"y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewWorkerRegistry(nil)
			if got := Bootstrap(reg, tt.raw); got != tt.wantCount {
				t.Fatalf("Bootstrap returned %d, want %d", got, tt.wantCount)
			}
			snap := reg.Snapshot()
			if len(snap) != tt.wantCount {
				t.Fatalf("registry has %d workers, want %d", len(snap), tt.wantCount)
			}
			for i, want := range tt.wantLabels {
				if snap[i].Label != want {
					t.Errorf("label[%d] = %s, want %s", i, snap[i].Label, want)
				}
				if snap[i].Source != domain.SourceEnv {
					t.Errorf("bootstrap source = %s, want env", snap[i].Source)
				}
			}
			if tt.wantCount > 0 && snap[0].URL != tt.wantFirst {
				t.Errorf("first URL = %s, want %s", snap[0].URL, tt.wantFirst)
			}
		})
	}
}
