package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
)

// modelCache indexes downloaded models by name@version so repeated
// GetModelPath calls on the same host reuse the extracted artifact.
type modelCache struct {
	db *leveldb.DB
}

func openModelCache(path string) (*modelCache, error) {
	if basepath := filepath.Dir(path); basepath != "" {
		if err := os.MkdirAll(basepath, os.ModePerm); err != nil {
			return nil, err
		}
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &modelCache{db: db}, nil
}

func (c *modelCache) Get(key string) (string, error) {
	val, err := c.db.Get([]byte(key), nil)
	if err != nil {
		// ignore not found error
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(val), nil
}

func (c *modelCache) Set(key string, val string) error {
	return c.db.Put([]byte(key), []byte(val), nil)
}

func (c *modelCache) Close() error {
	return c.db.Close()
}
