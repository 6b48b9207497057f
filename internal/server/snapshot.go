// snapshot.go - Periodic export of the calendar collections to S3/MinIO.
//
// Each run reads every collection, writes them as one gzipped JSON object
// and uploads it under the configured prefix.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/minio/minio-go/v7"

	"calendar-api/internal/config"
	"calendar-api/internal/store"
)

// snapshotTimeout bounds a single export and upload.
const snapshotTimeout = 2 * time.Minute

// Snapshot is the document written to object storage.
type Snapshot struct {
	TakenAt     time.Time                   `json:"takenAt"`
	Version     string                      `json:"version,omitempty"`
	Collections map[string][]store.Document `json:"collections"`
}

// SnapshotManager uploads collection snapshots on a fixed interval.
type SnapshotManager struct {
	config  config.SnapshotConfig
	db      store.Database
	objects objectStore
	version string
	now     func() time.Time

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewSnapshotManager connects to the configured bucket. The bucket must
// already exist.
func NewSnapshotManager(ctx context.Context, cfg config.SnapshotConfig, db store.Database, version string) (*SnapshotManager, error) {
	client, err := newMinioClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("snapshot storage: %w", err)
	}
	return newSnapshotManager(cfg, db, client, version), nil
}

func newSnapshotManager(cfg config.SnapshotConfig, db store.Database, objects objectStore, version string) *SnapshotManager {
	return &SnapshotManager{
		config:   cfg,
		db:       db,
		objects:  objects,
		version:  version,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the snapshot scheduler. The first snapshot is taken
// immediately.
func (sm *SnapshotManager) Start() {
	Info("snapshot scheduler started", map[string]any{
		"interval": sm.config.Interval.String(),
		"bucket":   sm.config.Bucket,
		"prefix":   sm.config.Prefix,
	})

	go func() {
		defer close(sm.done)

		ticker := time.NewTicker(sm.config.Interval)
		defer ticker.Stop()

		sm.run()
		for {
			select {
			case <-ticker.C:
				sm.run()
			case <-sm.stopChan:
				Info("snapshot scheduler stopped", nil)
				return
			}
		}
	}()
}

// Stop halts the scheduler and waits for an in-flight snapshot to finish.
func (sm *SnapshotManager) Stop() {
	sm.stopOnce.Do(func() { close(sm.stopChan) })
	<-sm.done
}

func (sm *SnapshotManager) run() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if _, err := sm.TakeSnapshot(ctx); err != nil {
		Error("snapshot failed", nil, err)
	}
}

// TakeSnapshot exports all collections and uploads them. It returns the
// object key written.
func (sm *SnapshotManager) TakeSnapshot(ctx context.Context) (string, error) {
	start := time.Now()
	takenAt := sm.now().UTC()

	body, err := sm.buildSnapshot(ctx, takenAt)
	if err != nil {
		GetMetrics().RecordSnapshot(0, time.Since(start), err)
		return "", err
	}

	key := snapshotKey(sm.config.Prefix, takenAt)
	_, err = sm.objects.PutObject(ctx, sm.config.Bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:     "application/json",
		ContentEncoding: "gzip",
	})
	if err != nil {
		err = fmt.Errorf("upload snapshot %s: %w", key, err)
		GetMetrics().RecordSnapshot(0, time.Since(start), err)
		return "", err
	}

	duration := time.Since(start)
	GetMetrics().RecordSnapshot(int64(len(body)), duration, nil)
	Info("snapshot uploaded", map[string]any{
		"bucket":      sm.config.Bucket,
		"key":         key,
		"size_bytes":  len(body),
		"duration_ms": duration.Milliseconds(),
	})
	return key, nil
}

func (sm *SnapshotManager) buildSnapshot(ctx context.Context, takenAt time.Time) ([]byte, error) {
	snap := Snapshot{
		TakenAt:     takenAt,
		Version:     sm.version,
		Collections: make(map[string][]store.Document, 3),
	}
	for _, name := range []string{store.Events, store.Goals, store.Tasks} {
		docs, err := sm.db.Collection(name).Find(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		snap.Collections[name] = docs
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func (sm *SnapshotManager) checkHealth(ctx context.Context) ComponentHealth {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := sm.objects.BucketExists(ctx, sm.config.Bucket)
	if err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDegraded,
			Message: "snapshot storage check failed: " + err.Error(),
		}
	}
	if !exists {
		return ComponentHealth{
			Status:  ComponentStatusDegraded,
			Message: "snapshot bucket missing",
		}
	}

	return ComponentHealth{
		Status:    ComponentStatusUp,
		Message:   "snapshot storage healthy",
		LatencyMs: float64(time.Since(start).Milliseconds()),
	}
}

// snapshotKey names the object for a snapshot taken at t.
func snapshotKey(prefix string, t time.Time) string {
	name := fmt.Sprintf("calendar-snapshot-%s.json.gz", t.UTC().Format("20060102-150405"))
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
