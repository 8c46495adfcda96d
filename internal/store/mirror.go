package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Remote is a best-effort copy of the store, such as an S3 bucket
type Remote interface {
	Push(ctx context.Context, key string, data []byte) error
	Pull(ctx context.Context, key string) ([]byte, bool, error)
}

const mirrorTimeout = 30 * time.Second

// MirroredKV writes through to a primary store and copies every successful write to
// a remote in the background. Remote failures are logged and never reach the caller.
//
// Each key has at most one push in flight. Writes that arrive while it runs
// replace the pending value, so the remote always ends on the latest write.
type MirroredKV struct {
	primary KV
	remote  Remote
	log     zerolog.Logger
	prefix  string

	// writeMu orders primary writes with their queued pushes
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string][]byte
	active  map[string]bool
	wg      sync.WaitGroup
}

// NewMirroredKV wraps primary with an asynchronous remote mirror
func NewMirroredKV(primary KV, remote Remote, log zerolog.Logger) *MirroredKV {
	return &MirroredKV{
		primary: primary,
		remote:  remote,
		log:     log.With().Str("component", "kv_mirror").Logger(),
		prefix:  "kv/",
		pending: make(map[string][]byte),
		active:  make(map[string]bool),
	}
}

// Get reads from the primary store only
func (m *MirroredKV) Get(ctx context.Context, key string) (json.RawMessage, error) {
	return m.primary.Get(ctx, key)
}

// Set writes to the primary store, then mirrors the value
func (m *MirroredKV) Set(ctx context.Context, key string, value json.RawMessage) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.primary.Set(ctx, key, value); err != nil {
		return err
	}
	m.push(key, value)
	return nil
}

// SetMany writes to the primary store atomically, then mirrors each value
func (m *MirroredKV) SetMany(ctx context.Context, values map[string]json.RawMessage) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.primary.SetMany(ctx, values); err != nil {
		return err
	}
	for k, v := range values {
		m.push(k, v)
	}
	return nil
}

// Restore copies keys that were never written locally from the remote. Any other
// primary error aborts the restore so live data is never overwritten.
func (m *MirroredKV) Restore(ctx context.Context, keys ...string) (int, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	restored := 0
	for _, key := range keys {
		_, err := m.primary.Get(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return restored, fmt.Errorf("read %s: %w", key, err)
		}

		data, ok, err := m.remote.Pull(ctx, m.objectKey(key))
		if err != nil {
			return restored, fmt.Errorf("pull %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if !json.Valid(data) {
			m.log.Warn().Str("key", key).Msg("ignoring invalid mirrored value")
			continue
		}
		if err := m.primary.Set(ctx, key, data); err != nil {
			return restored, err
		}
		restored++
	}
	return restored, nil
}

// Wait blocks until pending mirror writes finish
func (m *MirroredKV) Wait() {
	m.wg.Wait()
}

func (m *MirroredKV) push(key string, value json.RawMessage) {
	data := append([]byte(nil), value...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[key] = data
	if m.active[key] {
		return
	}
	m.active[key] = true
	m.wg.Add(1)
	go m.drain(key)
}

// drain pushes the latest pending value of key until none is left
func (m *MirroredKV) drain(key string) {
	defer m.wg.Done()
	for {
		m.mu.Lock()
		data, ok := m.pending[key]
		if !ok {
			delete(m.active, key)
			m.mu.Unlock()
			return
		}
		delete(m.pending, key)
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		err := m.remote.Push(ctx, m.objectKey(key), data)
		cancel()
		if err != nil {
			m.log.Error().Err(err).Str("key", key).Msg("mirror sync failed")
			continue
		}
		m.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("mirrored")
	}
}

func (m *MirroredKV) objectKey(key string) string {
	return m.prefix + key + ".json"
}
