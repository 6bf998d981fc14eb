package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Keys used by the engines. Per-achievement progress keys are built with
// ProgressKey and CurrentValueKey.
const (
	WalletKey               = "wallet"
	UnlockedAchievementsKey = "unlockedAchievements"
	LevelProgressKey        = "levelProgress"

	progressPrefix     = "achievement_progress_"
	currentValuePrefix = "achievement_current_value_"
)

var ErrNotFound = errors.New("record not found")

// Store is the local key-value persistence port shared by all engines.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Delete(key string) error
	// Keys lists stored keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
}

func ProgressKey(achievementID string) string {
	return progressPrefix + achievementID
}

func CurrentValueKey(achievementID string) string {
	return currentValuePrefix + achievementID
}

// ProgressKeyPrefixes returns the prefixes of all per-achievement cache keys.
func ProgressKeyPrefixes() []string {
	return []string{progressPrefix, currentValuePrefix}
}

// Memory is an in-process Store, used by tests and as a fallback when the
// database cannot be opened.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.records[key] = stored
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
