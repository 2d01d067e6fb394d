package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yamdb/yamdb/internal/models"
	"golang.org/x/crypto/hkdf"
)

const (
	confirmationKeyInfo = "yamdb confirmation code"
	confirmationKeySize = 32
	confirmationHashLen = 32 // hex chars kept from the HMAC
)

// CodeGenerator derives one-time confirmation codes from account state.
// A code is "<base36 unix seconds>-<hmac prefix>" and stops verifying as soon
// as the username, email, role or last login of the account changes.
type CodeGenerator struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewCodeGenerator(secret string, ttl time.Duration) (*CodeGenerator, error) {
	key := make([]byte, confirmationKeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(confirmationKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive confirmation key: %w", err)
	}
	return &CodeGenerator{key: key, ttl: ttl, now: time.Now}, nil
}

func (g *CodeGenerator) Make(user *models.User) string {
	return g.makeAt(user, g.now().Unix())
}

// Check verifies code against the current state of user.
func (g *CodeGenerator) Check(user *models.User, code string) bool {
	if user == nil || code == "" {
		return false
	}

	tsPart, _, ok := strings.Cut(code, "-")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}

	expected := g.makeAt(user, ts)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		return false
	}

	age := g.now().Sub(time.Unix(ts, 0))
	return age <= g.ttl
}

func (g *CodeGenerator) makeAt(user *models.User, ts int64) string {
	tsPart := strconv.FormatInt(ts, 36)

	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(hashState(user, ts)))
	sum := hex.EncodeToString(mac.Sum(nil))

	return tsPart + "-" + sum[:confirmationHashLen]
}

// hashState truncates last login to whole seconds so the value survives a
// database round trip regardless of the driver's timestamp precision.
func hashState(user *models.User, ts int64) string {
	lastLogin := ""
	if user.LastLogin != nil {
		lastLogin = strconv.FormatInt(user.LastLogin.Unix(), 10)
	}
	return strings.Join([]string{
		user.ID.String(),
		user.Username,
		user.Email,
		string(user.Role),
		lastLogin,
		strconv.FormatInt(ts, 10),
	}, "|")
}
