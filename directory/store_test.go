package directory

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// storeTests runs the common suite against any Store implementation.
func storeTests(t *testing.T, store Store) {
	t.Helper()

	t.Run("SaveAndLookup", func(t *testing.T) {
		u := &User{ID: uuid.New(), Email: "one@example.com", Username: "One"}
		if err := store.SaveUser(u); err != nil {
			t.Fatalf("SaveUser: %v", err)
		}

		byID, err := store.UserByID(u.ID)
		if err != nil {
			t.Fatalf("UserByID: %v", err)
		}
		if byID.Email != "one@example.com" {
			t.Fatalf("got email %q, want %q", byID.Email, "one@example.com")
		}

		byEmail, err := store.UserByEmail("ONE@example.com")
		if err != nil {
			t.Fatalf("UserByEmail (case-insensitive): %v", err)
		}
		if byEmail.ID != u.ID {
			t.Fatal("email lookup returned the wrong user")
		}

		byUsername, err := store.UserByUsername("one")
		if err != nil {
			t.Fatalf("UserByUsername (case-insensitive): %v", err)
		}
		if byUsername.ID != u.ID {
			t.Fatal("username lookup returned the wrong user")
		}
	})

	t.Run("LookupMissing", func(t *testing.T) {
		if _, err := store.UserByID(uuid.New()); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("got %v, want ErrUserNotFound", err)
		}
		if _, err := store.UserByEmail("ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("got %v, want ErrUserNotFound", err)
		}
		if _, err := store.UserByUsername("ghost"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("got %v, want ErrUserNotFound", err)
		}
	})

	t.Run("UpdateReindexes", func(t *testing.T) {
		u := &User{ID: uuid.New(), Email: "old@example.com", Username: "oldname"}
		if err := store.SaveUser(u); err != nil {
			t.Fatalf("SaveUser: %v", err)
		}

		u.Email = "new@example.com"
		u.Username = "newname"
		if err := store.SaveUser(u); err != nil {
			t.Fatalf("SaveUser (update): %v", err)
		}

		if _, err := store.UserByEmail("new@example.com"); err != nil {
			t.Fatalf("UserByEmail after update: %v", err)
		}
		if _, err := store.UserByEmail("old@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected old email to be unindexed, got %v", err)
		}
		if _, err := store.UserByUsername("oldname"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected old username to be unindexed, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		u := &User{ID: uuid.New(), Email: "del@example.com", Username: "del"}
		if err := store.SaveUser(u); err != nil {
			t.Fatalf("SaveUser: %v", err)
		}
		if err := store.DeleteUser(u.ID); err != nil {
			t.Fatalf("DeleteUser: %v", err)
		}
		if _, err := store.UserByID(u.ID); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("got %v, want ErrUserNotFound", err)
		}
		if _, err := store.UserByEmail("del@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected deleted user's email to be unindexed, got %v", err)
		}
		if err := store.DeleteUser(u.ID); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("got %v, want ErrUserNotFound for double delete", err)
		}
	})

	t.Run("ConfigDefaultsEmpty", func(t *testing.T) {
		cfg, err := store.GlobalConfig()
		if err != nil {
			t.Fatalf("GlobalConfig: %v", err)
		}
		if string(cfg) != "{}" {
			t.Fatalf("got %q, want empty object", cfg)
		}

		userCfg, err := store.UserConfig(uuid.New())
		if err != nil {
			t.Fatalf("UserConfig: %v", err)
		}
		if string(userCfg) != "{}" {
			t.Fatalf("got %q, want empty object", userCfg)
		}
	})

	t.Run("ConfigRoundTrip", func(t *testing.T) {
		if err := store.SetGlobalConfig(json.RawMessage(`{"theme":"dark"}`)); err != nil {
			t.Fatalf("SetGlobalConfig: %v", err)
		}
		cfg, err := store.GlobalConfig()
		if err != nil {
			t.Fatalf("GlobalConfig: %v", err)
		}
		if string(cfg) != `{"theme":"dark"}` {
			t.Fatalf("got %q", cfg)
		}

		id := uuid.New()
		if err := store.SetUserConfig(id, json.RawMessage(`{"volume":7}`)); err != nil {
			t.Fatalf("SetUserConfig: %v", err)
		}
		userCfg, err := store.UserConfig(id)
		if err != nil {
			t.Fatalf("UserConfig: %v", err)
		}
		if string(userCfg) != `{"volume":7}` {
			t.Fatalf("got %q", userCfg)
		}

		// Another user's config is untouched.
		other, err := store.UserConfig(uuid.New())
		if err != nil {
			t.Fatalf("UserConfig (other): %v", err)
		}
		if string(other) != "{}" {
			t.Fatalf("got %q, want empty object", other)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeTests(t, NewMemoryStore())
}

func TestBoltStore(t *testing.T) {
	store, err := NewBoltStoreFromFile(filepath.Join(t.TempDir(), "directory.db"), nil)
	if err != nil {
		t.Fatalf("NewBoltStoreFromFile: %v", err)
	}
	defer store.Close()

	storeTests(t, store)

	t.Run("SurvivesReopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "directory.db")
		s1, err := NewBoltStoreFromFile(path, nil)
		if err != nil {
			t.Fatalf("NewBoltStoreFromFile: %v", err)
		}
		u := &User{ID: uuid.New(), Email: "persist@example.com", Username: "persist"}
		if err := s1.SaveUser(u); err != nil {
			t.Fatalf("SaveUser: %v", err)
		}
		if err := s1.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		s2, err := NewBoltStoreFromFile(path, nil)
		if err != nil {
			t.Fatalf("NewBoltStoreFromFile (reopen): %v", err)
		}
		defer s2.Close()

		got, err := s2.UserByEmail("persist@example.com")
		if err != nil {
			t.Fatalf("UserByEmail after reopen: %v", err)
		}
		if got.ID != u.ID {
			t.Fatal("expected the persisted user back")
		}
	})
}

func TestVerifier(t *testing.T) {
	store := NewMemoryStore()
	u := &User{ID: uuid.New(), Email: "alice@example.com", Username: "alice"}
	if err := u.SetPassword("hunter2"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := store.SaveUser(u); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	v := &Verifier{Users: store}

	got, err := v.Verify(t.Context(), "alice@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.ID != u.ID {
		t.Fatal("expected alice back")
	}

	if _, err := v.Verify(t.Context(), "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	if _, err := v.Verify(t.Context(), "nobody@example.com", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}
