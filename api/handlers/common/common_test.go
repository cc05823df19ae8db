package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agentdesk/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		raw  string
		ok   bool
		want int64
	}{
		{"12", true, 12},
		{"0", false, 0},
		{"-1", false, 0},
		{"abc", false, 0},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: tc.raw}}
		id, ok := ParamID(c, "id")
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, id)
		if !ok {
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	}
}

func TestCurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	_, ok := CurrentUser(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Set(string(auth.UserContextKey), &auth.UserContext{UserID: 3, Role: auth.RoleUser})
	u, ok := CurrentUser(c)
	assert.True(t, ok)
	assert.Equal(t, int64(3), u.UserID)
}

func TestOptionalID(t *testing.T) {
	id, err := OptionalID(float64(4))
	assert.NoError(t, err)
	assert.Equal(t, int64(4), *id)

	id, err = OptionalID("7")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), *id)

	for _, empty := range []any{nil, "", float64(0)} {
		id, err = OptionalID(empty)
		assert.NoError(t, err)
		assert.Nil(t, id)
	}
	for _, bad := range []any{1.5, "x", true, float64(-2)} {
		_, err = OptionalID(bad)
		assert.Error(t, err, "%v", bad)
	}
}
