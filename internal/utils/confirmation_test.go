package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yamdb/yamdb/internal/models"
)

func newTestGenerator(t *testing.T, ttl time.Duration) *CodeGenerator {
	t.Helper()
	g, err := NewCodeGenerator(testSecret, ttl)
	require.NoError(t, err)
	return g
}

func TestConfirmationCode_Format(t *testing.T) {
	g := newTestGenerator(t, time.Hour)

	code := g.Make(createTestUser(models.RoleUser))

	parts := strings.Split(code, "-")
	require.Len(t, parts, 2)
	assert.Len(t, parts[1], confirmationHashLen)
}

func TestConfirmationCode_VerifiesForSameUser(t *testing.T) {
	g := newTestGenerator(t, time.Hour)
	user := createTestUser(models.RoleUser)

	code := g.Make(user)

	assert.True(t, g.Check(user, code))
}

func TestConfirmationCode_BoundToOneAccount(t *testing.T) {
	g := newTestGenerator(t, time.Hour)
	alice := createTestUser(models.RoleUser)
	bob := createTestUser(models.RoleUser)

	code := g.Make(alice)

	assert.False(t, g.Check(bob, code))
}

func TestConfirmationCode_InvalidatedByStateChange(t *testing.T) {
	g := newTestGenerator(t, time.Hour)

	testCases := []struct {
		name   string
		mutate func(u *models.User)
	}{
		{"username", func(u *models.User) { u.Username = "renamed" }},
		{"email", func(u *models.User) { u.Email = "other@example.com" }},
		{"role", func(u *models.User) { u.Role = models.RoleModerator }},
		{"last login", func(u *models.User) {
			now := time.Now()
			u.LastLogin = &now
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user := createTestUser(models.RoleUser)
			code := g.Make(user)

			tc.mutate(user)

			assert.False(t, g.Check(user, code))
		})
	}
}

func TestConfirmationCode_LastLoginPrecisionIgnored(t *testing.T) {
	g := newTestGenerator(t, time.Hour)
	user := createTestUser(models.RoleUser)
	login := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC)
	user.LastLogin = &login

	code := g.Make(user)

	truncated := login.Truncate(time.Microsecond).In(time.FixedZone("X", 3600))
	user.LastLogin = &truncated
	assert.True(t, g.Check(user, code))
}

func TestConfirmationCode_Expires(t *testing.T) {
	g := newTestGenerator(t, time.Hour)
	user := createTestUser(models.RoleUser)
	issued := time.Now()
	g.now = func() time.Time { return issued }

	code := g.Make(user)

	g.now = func() time.Time { return issued.Add(59 * time.Minute) }
	assert.True(t, g.Check(user, code))

	g.now = func() time.Time { return issued.Add(61 * time.Minute) }
	assert.False(t, g.Check(user, code))
}

func TestConfirmationCode_Malformed(t *testing.T) {
	g := newTestGenerator(t, time.Hour)
	user := createTestUser(models.RoleUser)

	for _, code := range []string{"", "nodash", "zz!-abc", "-abc", "abc-"} {
		assert.False(t, g.Check(user, code), "code %q", code)
	}
	assert.False(t, g.Check(nil, g.Make(user)))
}

func TestConfirmationCode_KeyDependsOnSecret(t *testing.T) {
	user := createTestUser(models.RoleUser)
	a := newTestGenerator(t, time.Hour)
	b, err := NewCodeGenerator(testWrongSecret, time.Hour)
	require.NoError(t, err)

	assert.False(t, b.Check(user, a.Make(user)))
}
