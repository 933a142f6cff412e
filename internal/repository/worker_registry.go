package repository

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mfagundes/taskfan/internal/metrics"
	"github.com/mfagundes/taskfan/pkg/domain"
)

// WorkerRegistry is the only mutable shared state in the control plane. It is
// created once at process start and torn down with the process; persistence is
// deliberately in-memory only.
type WorkerRegistry interface {
	// Register inserts a worker or, when the label exists, overwrites its URL
	// and refreshes the timestamps. The worker keeps its insertion position.
	Register(label, rawURL string, source domain.WorkerSource) (domain.WorkerRecord, error)
	// Snapshot returns an immutable point-in-time copy in insertion order of
	// distinct labels.
	Snapshot() []domain.WorkerRecord
	// List is Snapshot exposed for inspection endpoints.
	List() []domain.WorkerRecord
	// Touch refreshes lastSeenAt for a worker that answered a call.
	Touch(label string, at time.Time)
	// Evict removes a worker; reports whether the label was present.
	Evict(label string) bool
	Len() int
}

type workerRegistry struct {
	mu      sync.RWMutex
	byLabel map[string]*domain.WorkerRecord
	order   []string
	now     func() time.Time
}

func NewWorkerRegistry(now func() time.Time) WorkerRegistry {
	if now == nil {
		now = time.Now
	}
	return &workerRegistry{
		byLabel: make(map[string]*domain.WorkerRecord),
		now:     now,
	}
}

func (r *workerRegistry) Register(label, rawURL string, source domain.WorkerSource) (domain.WorkerRecord, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.WorkerRecord{}, fmt.Errorf("%w: label is required", domain.ErrInvalidInput)
	}
	u, err := NormalizeWorkerURL(rawURL)
	if err != nil {
		return domain.WorkerRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	rec, ok := r.byLabel[label]
	if !ok {
		rec = &domain.WorkerRecord{Label: label}
		r.byLabel[label] = rec
		r.order = append(r.order, label)
	}
	rec.URL = u
	rec.Source = source
	rec.RegisteredAt = now
	rec.LastSeenAt = now

	metrics.RegisteredWorkers.Set(float64(len(r.order)))
	return *rec, nil
}

func (r *workerRegistry) Snapshot() []domain.WorkerRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.WorkerRecord, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, *r.byLabel[label])
	}
	return out
}

func (r *workerRegistry) List() []domain.WorkerRecord {
	return r.Snapshot()
}

func (r *workerRegistry) Touch(label string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.byLabel[label]; ok && at.After(rec.LastSeenAt) {
		rec.LastSeenAt = at
	}
}

func (r *workerRegistry) Evict(label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLabel[label]; !ok {
		return false
	}
	delete(r.byLabel, label)
	for i, l := range r.order {
		if l == label {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	metrics.RegisteredWorkers.Set(float64(len(r.order)))
	return true
}

func (r *workerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// NormalizeWorkerURL trims trailing slashes and requires an http(s) scheme.
func NormalizeWorkerURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	for strings.HasSuffix(u, "/") {
		u = strings.TrimSuffix(u, "/")
	}
	if u == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return "", fmt.Errorf("%w: url must start with http:// or https://", domain.ErrInvalidInput)
	}
	return u, nil
}

type bootstrapEntry struct {
	Label string `json:"label"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

// Bootstrap seeds the registry from the WORKERS startup value: either a JSON
// array of {label,url} objects or a comma-separated URL list. Invalid entries
// are skipped; the count of registered workers is returned.
func Bootstrap(reg WorkerRegistry, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	registered := 0
	var entries []bootstrapEntry
	if err := json.Unmarshal([]byte(raw), &entries); err == nil {
		for i, e := range entries {
			label := strings.TrimSpace(e.Label)
			if label == "" {
				label = strings.TrimSpace(e.Name)
			}
			if label == "" {
				label = fmt.Sprintf("env-%d", i+1)
			}
			if _, err := reg.Register(label, e.URL, domain.SourceEnv); err == nil {
				registered++
			}
		}
		return registered
	}

	for i, u := range strings.Split(raw, ",") {
		if strings.TrimSpace(u) == "" {
			continue
		}
		if _, err := reg.Register(fmt.Sprintf("worker-%d", i+1), u, domain.SourceEnv); err == nil {
			registered++
		}
	}
	return registered
}
