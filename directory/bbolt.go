package directory

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	bucketUsers     = []byte("users")
	bucketEmails    = []byte("user_emails")
	bucketUsernames = []byte("user_usernames")
	bucketConfig    = []byte("config")

	globalConfigKey = []byte("global")
)

// emptyConfig is what a missing config document reads as.
var emptyConfig = json.RawMessage("{}")

// BoltStore implements Store backed by a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore returns a Store backed by the given bbolt database, creating
// its buckets if necessary.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketEmails, bucketUsernames, bucketConfig} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("initializing directory buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// NewBoltStoreFromFile opens a bbolt database at the given path and returns
// a Store over it.
func NewBoltStoreFromFile(path string, options *bbolt.Options) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening directory db: %w", err)
	}
	return NewBoltStore(db)
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) UserByID(id uuid.UUID) (*User, error) {
	var user *User
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = userFromBucket(tx, []byte(id.String()))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *BoltStore) UserByEmail(email string) (*User, error) {
	return s.userByIndex(bucketEmails, NormalizeEmail(email))
}

func (s *BoltStore) UserByUsername(username string) (*User, error) {
	return s.userByIndex(bucketUsernames, NormalizeUsername(username))
}

func (s *BoltStore) userByIndex(index []byte, key string) (*User, error) {
	var user *User
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(index).Get([]byte(key))
		if id == nil {
			return fmt.Errorf("%s: %w", key, ErrUserNotFound)
		}
		var err error
		user, err = userFromBucket(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func userFromBucket(tx *bbolt.Tx, id []byte) (*User, error) {
	data := tx.Bucket(bucketUsers).Get(id)
	if data == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrUserNotFound)
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decoding user %s: %w", id, err)
	}
	return &user, nil
}

func (s *BoltStore) SaveUser(u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	id := []byte(u.ID.String())
	return s.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		emails := tx.Bucket(bucketEmails)
		usernames := tx.Bucket(bucketUsernames)

		// Drop index entries for the previous email/username before they
		// change out from under us.
		if old := users.Get(id); old != nil {
			var prev User
			if err := json.Unmarshal(old, &prev); err == nil {
				if err := emails.Delete([]byte(NormalizeEmail(prev.Email))); err != nil {
					return err
				}
				if err := usernames.Delete([]byte(NormalizeUsername(prev.Username))); err != nil {
					return err
				}
			}
		}

		if err := users.Put(id, data); err != nil {
			return err
		}
		if err := emails.Put([]byte(NormalizeEmail(u.Email)), id); err != nil {
			return err
		}
		return usernames.Put([]byte(NormalizeUsername(u.Username)), id)
	})
}

func (s *BoltStore) DeleteUser(id uuid.UUID) error {
	key := []byte(id.String())
	return s.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		old := users.Get(key)
		if old == nil {
			return fmt.Errorf("%s: %w", id, ErrUserNotFound)
		}
		var prev User
		if err := json.Unmarshal(old, &prev); err == nil {
			if err := tx.Bucket(bucketEmails).Delete([]byte(NormalizeEmail(prev.Email))); err != nil {
				return err
			}
			if err := tx.Bucket(bucketUsernames).Delete([]byte(NormalizeUsername(prev.Username))); err != nil {
				return err
			}
		}
		if err := users.Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketConfig).Delete(userConfigKey(id))
	})
}

func (s *BoltStore) GlobalConfig() (json.RawMessage, error) {
	return s.config(globalConfigKey)
}

func (s *BoltStore) SetGlobalConfig(config json.RawMessage) error {
	return s.setConfig(globalConfigKey, config)
}

func (s *BoltStore) UserConfig(id uuid.UUID) (json.RawMessage, error) {
	return s.config(userConfigKey(id))
}

func (s *BoltStore) SetUserConfig(id uuid.UUID, config json.RawMessage) error {
	return s.setConfig(userConfigKey(id), config)
}

func (s *BoltStore) config(key []byte) (json.RawMessage, error) {
	var out json.RawMessage
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketConfig).Get(key)
		if data == nil {
			out = emptyConfig
			return nil
		}
		out = append(json.RawMessage(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) setConfig(key []byte, config json.RawMessage) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketConfig).Put(key, config)
	})
}

func userConfigKey(id uuid.UUID) []byte {
	return []byte("user:" + id.String())
}
