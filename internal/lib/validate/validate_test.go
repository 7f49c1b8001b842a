package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-console/internal/lib/api/request"
)

func TestStruct_Login(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(request.Login{Username: "alice", Password: "secret1"}))

	err := v.Struct(request.Login{Password: "123"})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)

	assert.Equal(t, "is required", fe["username"])
	assert.Equal(t, "must be at least 6 characters", fe["password"])
}

func TestStruct_RegisterPasswordRules(t *testing.T) {
	v := New()
	base := request.Register{Username: "bob", Email: "bob@example.com"}

	tests := map[string]string{
		"secret1": "must contain an uppercase letter",
		"Secrets": "must contain a digit",
		"Se1":     "must be at least 6 characters",
	}

	for pw, want := range tests {
		t.Run(pw, func(t *testing.T) {
			r := base
			r.Password = pw

			fe, ok := AsFieldErrors(v.Struct(r))
			require.True(t, ok)
			assert.Equal(t, want, fe["password"])
		})
	}

	r := base
	r.Password = "Secret1"
	assert.NoError(t, v.Struct(r))
}

func TestStruct_RegisterAdminCode(t *testing.T) {
	v := New()
	r := request.Register{Username: "root", Email: "root@example.com", Password: "Secret1", IsAdmin: true}

	fe, ok := AsFieldErrors(v.Struct(r))
	require.True(t, ok)
	assert.Equal(t, "is required", fe["adminCode"])

	r.AdminCode = "code"
	assert.NoError(t, v.Struct(r))

	r.IsAdmin, r.AdminCode = false, ""
	assert.NoError(t, v.Struct(r))
}

func TestStruct_RegisterUsernameBounds(t *testing.T) {
	v := New()
	r := request.Register{Username: "ab", Email: "x@example.com", Password: "Secret1"}

	fe, ok := AsFieldErrors(v.Struct(r))
	require.True(t, ok)
	assert.Equal(t, "must be at least 3 characters", fe["username"])

	r.Username = "abcdefghijklmnopqrstu"
	fe, ok = AsFieldErrors(v.Struct(r))
	require.True(t, ok)
	assert.Equal(t, "must be at most 20 characters", fe["username"])
}

func TestStruct_Category(t *testing.T) {
	v := New()

	fe, ok := AsFieldErrors(v.Struct(request.Category{Name: "ab"}))
	require.True(t, ok)
	assert.Contains(t, fe.Error(), "name")

	assert.NoError(t, v.Struct(request.Category{Name: "Tech"}))
}
