package directory

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for newly set passwords. Existing digests carry their
// own parameters, so these can be raised without invalidating stored hashes.
const (
	scryptN       = 32768
	scryptR       = 8
	scryptP       = 1
	scryptKeyLen  = 32
	scryptSaltLen = 16
)

// User is one account in the directory. The password is stored only as an
// scrypt digest; the digest string embeds its own parameters and salt in the
// form scrypt$N$r$p$salt$key.
type User struct {
	ID             uuid.UUID `json:"uid"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordDigest string    `json:"phash"`
}

// SetPassword replaces the user's password digest with one derived from the
// given plaintext.
func (u *User) SetPassword(password string) error {
	digest, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordDigest = digest
	return nil
}

// VerifyPassword reports whether the plaintext matches the stored digest.
// Malformed digests verify as false rather than erroring; a caller can only
// ever act on a boolean here.
func (u *User) VerifyPassword(password string) bool {
	params := strings.Split(u.PasswordDigest, "$")
	if len(params) != 6 || params[0] != "scrypt" {
		return false
	}
	n, err1 := strconv.Atoi(params[1])
	r, err2 := strconv.Atoi(params[2])
	p, err3 := strconv.Atoi(params[3])
	salt, err4 := hex.DecodeString(params[4])
	want, err5 := hex.DecodeString(params[5])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return false
	}
	got, err := scrypt.Key([]byte(password), salt, n, r, p, len(want))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

// HashPassword derives an scrypt digest with a fresh random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, scryptSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating password salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("deriving password digest: %w", err)
	}
	return fmt.Sprintf("scrypt$%d$%d$%d$%s$%s",
		scryptN, scryptR, scryptP, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}
