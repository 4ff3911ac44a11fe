// Package fieldcrypt protects individual field values inside audit trail
// snapshots. Values are encrypted with AES-256-GCM under a key derived from
// the process-wide audit secret plus the field name and record identifier,
// so a leaked ciphertext for one field cannot be replayed against another.
//
// The salt and IV generated at encryption time are stored on the
// EncryptedField and must be fed back into derivation at decryption time;
// they are derivation inputs, never regenerated.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// Sentinel replaces a protected field's value in the redacted view of an
// audit snapshot. The true value is only recoverable from the sensitive map.
const Sentinel = "[ENCRYPTED]"

const (
	keyLen     = 32
	saltLen    = 16
	ivLen      = 12 // standard GCM nonce size
	tagLen     = 16
	iterations = 120_000
)

var (
	// ErrMissingSecret is returned by New when no secret is provided.
	ErrMissingSecret = errors.New("fieldcrypt: encryption secret is required")
	// ErrSerialize is returned when a value cannot be serialized for encryption.
	ErrSerialize = errors.New("fieldcrypt: value cannot be serialized")
	// ErrEncrypt is returned when the cipher operation itself fails.
	ErrEncrypt = errors.New("fieldcrypt: encryption failed")
	// ErrDecrypt is returned when the authentication tag fails to verify or
	// the derivation inputs do not match those used at encryption time.
	ErrDecrypt = errors.New("fieldcrypt: decryption failed")
)

// EncryptedField carries a ciphertext together with all material needed to
// attempt decryption. All binary fields are hex-encoded. KeyID is an opaque
// traceability label, not a lookup key.
type EncryptedField struct {
	Ciphertext string `json:"ciphertext"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	AuthTag    string `json:"auth_tag"`
	KeyID      string `json:"key_id"`
}

// Cipher performs stateless per-field encryption and decryption. The only
// state is the immutable secret set at construction; a Cipher is safe for
// concurrent use.
type Cipher struct {
	secret     []byte
	iterations int
}

// New creates a Cipher keyed by the given secret.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Cipher{secret: []byte(secret), iterations: iterations}, nil
}

// deriveKey stretches the secret, field name, and record identifier into a
// symmetric key using PBKDF2-SHA256 with the given salt.
func (c *Cipher) deriveKey(fieldName, recordID string, salt []byte) []byte {
	material := fmt.Sprintf("%s:%s:%s", c.secret, fieldName, recordID)
	return pbkdf2.Key([]byte(material), salt, c.iterations, keyLen, sha256.New)
}

// Encrypt protects a single field value. Empty values are not encrypted and
// return (nil, nil). The field name is bound as associated data, so a
// ciphertext only decrypts against the same field.
func (c *Cipher) Encrypt(value any, fieldName, recordID string) (*EncryptedField, error) {
	if isEmpty(value) {
		return nil, nil
	}

	plaintext, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}
	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	gcm, err := c.newGCM(fieldName, recordID, salt)
	if err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, iv, plaintext, []byte(fieldName))
	body, tag := sealed[:len(sealed)-tagLen], sealed[len(sealed)-tagLen:]

	return &EncryptedField{
		Ciphertext: hex.EncodeToString(body),
		Salt:       hex.EncodeToString(salt),
		IV:         hex.EncodeToString(iv),
		AuthTag:    hex.EncodeToString(tag),
		KeyID:      fmt.Sprintf("%s-%s-%d", fieldName, recordID, time.Now().UnixMilli()),
	}, nil
}

// Decrypt recovers a field value. The key is derived with the salt stored on
// the EncryptedField; the IV and authentication tag are likewise taken from
// it. Any mismatch in field name, record identifier, or payload integrity
// fails with ErrDecrypt.
func (c *Cipher) Decrypt(ef *EncryptedField, fieldName, recordID string) (any, error) {
	if ef == nil {
		return nil, fmt.Errorf("%w: no encrypted payload", ErrDecrypt)
	}

	body, err := hex.DecodeString(ef.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext: %v", ErrDecrypt, err)
	}
	salt, err := hex.DecodeString(ef.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed salt: %v", ErrDecrypt, err)
	}
	iv, err := hex.DecodeString(ef.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed IV: %v", ErrDecrypt, err)
	}
	tag, err := hex.DecodeString(ef.AuthTag)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed auth tag: %v", ErrDecrypt, err)
	}

	gcm, err := c.newGCM(fieldName, recordID, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, iv, append(body, tag...), []byte(fieldName))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	var value any
	if err := json.Unmarshal(plaintext, &value); err != nil {
		return nil, fmt.Errorf("%w: malformed plaintext: %v", ErrDecrypt, err)
	}
	return value, nil
}

// EncryptFields redacts every protected, non-empty field of record and
// returns the redacted copy alongside a map of the encrypted true values.
// Unprotected fields pass through unchanged. The input record is not
// modified.
func (c *Cipher) EncryptFields(record map[string]any, protected []string, recordID string) (map[string]any, map[string]EncryptedField, error) {
	if record == nil {
		return nil, nil, nil
	}

	redacted := make(map[string]any, len(record))
	for k, v := range record {
		redacted[k] = v
	}

	sensitive := make(map[string]EncryptedField)
	for _, field := range protected {
		value, ok := record[field]
		if !ok || isEmpty(value) {
			continue
		}
		ef, err := c.Encrypt(value, field, recordID)
		if err != nil {
			return nil, nil, err
		}
		redacted[field] = Sentinel
		sensitive[field] = *ef
	}
	return redacted, sensitive, nil
}

// DecryptFields overwrites every key of record that has an entry in the
// sensitive map with its decrypted value. Fields that fail to decrypt keep
// their redacted value; the failures are reported as a joined error so the
// caller can log them without discarding the rest of the record.
func (c *Cipher) DecryptFields(record map[string]any, sensitive map[string]EncryptedField, recordID string) (map[string]any, error) {
	if record == nil {
		record = make(map[string]any, len(sensitive))
	}

	merged := make(map[string]any, len(record))
	for k, v := range record {
		merged[k] = v
	}

	// Deterministic order keeps joined error messages stable.
	fields := make([]string, 0, len(sensitive))
	for field := range sensitive {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var errs []error
	for _, field := range fields {
		ef := sensitive[field]
		value, err := c.Decrypt(&ef, field, recordID)
		if err != nil {
			errs = append(errs, fmt.Errorf("field %q: %w", field, err))
			continue
		}
		merged[field] = value
	}
	return merged, errors.Join(errs...)
}

// Hash returns the SHA-256 hex digest of the serialized value. It is one-way
// and suited for tamper-evidence or equality checks, never for recovery.
func (c *Cipher) Hash(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (c *Cipher) newGCM(fieldName, recordID string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.deriveKey(fieldName, recordID, salt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}
	return gcm, nil
}

// isEmpty reports whether a value is absent for encryption purposes.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *string:
		return v == nil || *v == ""
	}
	return false
}
