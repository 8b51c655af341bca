package storage

import (
	"database/sql"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a storage key has no value
var ErrKeyNotFound = errors.New("storage key not found")

// Well-known storage keys. These mirror the durable client-storage
// contract the portal UI was built against.
const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
	KeyIssuedAt  = "issuedAt"
	KeyTheme     = "theme"
)

// KVRepo handles durable key-value storage operations
type KVRepo struct{}

// NewKVRepo creates a new key-value repository
func NewKVRepo() *KVRepo {
	return &KVRepo{}
}

// Get retrieves a stored value
func (r *KVRepo) Get(key string) (string, error) {
	var value string
	err := DB.QueryRow("SELECT value FROM storage WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrKeyNotFound
	}
	return value, err
}

// Set sets a stored value
func (r *KVRepo) Set(key, value string) error {
	_, err := DB.Exec(`
		INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = ?
	`, key, value, time.Now(), value, time.Now())
	return err
}

// Delete removes a stored value. Deleting a missing key is not an error.
func (r *KVRepo) Delete(key string) error {
	_, err := DB.Exec("DELETE FROM storage WHERE key = ?", key)
	return err
}

// GetAll retrieves all stored values
func (r *KVRepo) GetAll() (map[string]string, error) {
	rows, err := DB.Query("SELECT key, value FROM storage")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}

	return values, nil
}
