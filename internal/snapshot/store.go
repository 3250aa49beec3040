package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
)

// State is the full persisted payload: the snapshot ring buffer plus the
// last-capture date marker.
type State struct {
	Snapshots   []DailySnapshot `json:"snapshots"`
	LastCapture string          `json:"lastCapture"`
}

// Store abstracts the local key-value persistence. Implementations read and
// write the whole state under a single caller; there is no concurrent-writer
// contention model.
type Store interface {
	Load() (State, error)
	Save(State) error
}

const (
	snapshotsKey   = "snapshots:daily"
	lastCaptureKey = "snapshots:last-capture"
)

// BadgerStore persists snapshots in a local Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) a Badger store at path.
func OpenBadger(path string) (*BadgerStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads both persisted keys. A missing or unparseable key is treated as
// empty rather than surfaced as an error.
func (s *BadgerStore) Load() (State, error) {
	var state State
	err := s.db.View(func(txn *badger.Txn) error {
		if raw, ok := getValue(txn, snapshotsKey); ok {
			if err := json.Unmarshal(raw, &state.Snapshots); err != nil {
				state.Snapshots = nil
			}
		}
		if raw, ok := getValue(txn, lastCaptureKey); ok {
			state.LastCapture = string(raw)
		}
		return nil
	})
	if err != nil {
		return State{}, fmt.Errorf("load snapshot state: %w", err)
	}
	return state, nil
}

// Save writes both persisted keys in one transaction.
func (s *BadgerStore) Save(state State) error {
	payload, err := json.Marshal(state.Snapshots)
	if err != nil {
		return fmt.Errorf("marshal snapshots: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(snapshotsKey), payload); err != nil {
			return err
		}
		return txn.Set([]byte(lastCaptureKey), []byte(state.LastCapture))
	})
	if err != nil {
		return fmt.Errorf("save snapshot state: %w", err)
	}
	return nil
}

func getValue(txn *badger.Txn, key string) ([]byte, bool) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// MemoryStore is an in-process Store used by tests and demo contexts.
type MemoryStore struct {
	state State
	// FailLoads and FailSaves force errors to exercise degradation paths.
	FailLoads bool
	FailSaves bool
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the held state.
func (m *MemoryStore) Load() (State, error) {
	if m.FailLoads {
		return State{}, fmt.Errorf("memory store: load disabled")
	}
	out := State{LastCapture: m.state.LastCapture}
	out.Snapshots = append(out.Snapshots, m.state.Snapshots...)
	return out, nil
}

// Save replaces the held state.
func (m *MemoryStore) Save(state State) error {
	if m.FailSaves {
		return fmt.Errorf("memory store: save disabled")
	}
	m.state = State{LastCapture: state.LastCapture}
	m.state.Snapshots = append(m.state.Snapshots, state.Snapshots...)
	return nil
}

var (
	_ Store = (*BadgerStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
