package persistence

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// DialectorOpener is an alias for a function that returns a gorm.Dialector for a given DSN.
type DialectorOpener = func(string) gorm.Dialector

var (
	registryMu sync.RWMutex
	providers  = make(map[string]DialectorOpener)
)

// Register adds a new storage provider to the registry.
func Register(name string, opener DialectorOpener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	providers[name] = opener
}

// Open connects to the named provider without touching the schema.
// extra may carry a *gorm.Config.
func Open(name string, dsn string, extra any) (*Repository, error) {
	registryMu.RLock()
	opener, ok := providers[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("persistence: unknown storage provider %q", name)
	}

	gormConfig, _ := extra.(*gorm.Config)
	if gormConfig == nil {
		gormConfig = &gorm.Config{TranslateError: true}
	}

	db, err := gorm.Open(opener(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", name, err)
	}

	return NewRepository(db), nil
}

// NewStorage opens the named provider and migrates the schema.
func NewStorage(name string, dsn string, extra any) (*Repository, error) {
	repo, err := Open(name, dsn, extra)
	if err != nil {
		return nil, err
	}

	if err := repo.AutoMigrate(); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("persistence: migrate: %w", err)
	}

	return repo, nil
}
