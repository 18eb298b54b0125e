package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(name string) Checker {
	return CheckFunc{CheckName: name, Fn: func(context.Context) error { return nil }}
}

func failing(name string) Checker {
	return CheckFunc{CheckName: name, Fn: func(context.Context) error { return errors.New("down") }}
}

func TestCheckerRegistry_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		critical []Checker
		optional []Checker
		want     Status
	}{
		{"all healthy", []Checker{ok("db")}, []Checker{ok("redis")}, StatusHealthy},
		{"optional failing", []Checker{ok("db")}, []Checker{failing("redis")}, StatusDegraded},
		{"critical failing", []Checker{failing("db")}, []Checker{ok("redis")}, StatusUnhealthy},
		{"nothing registered", nil, nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCheckerRegistry()
			for _, c := range tt.critical {
				r.Register(c)
			}
			for _, c := range tt.optional {
				r.RegisterOptional(c)
			}

			h := r.Check(context.Background())
			assert.Equal(t, tt.want, h.Status)
			assert.Len(t, h.Checks, len(tt.critical)+len(tt.optional))
		})
	}
}

func TestCheckerRegistry_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := NewCheckerRegistry()
	r.Register(failing("db"))

	router := gin.New()
	router.GET("/health", r.Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var h Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, StatusUnhealthy, h.Checks["db"].Status)
	assert.Equal(t, "down", h.Checks["db"].Message)
}

func TestPostgreSQLChecker(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	c := NewPostgreSQLChecker(db)
	assert.Equal(t, "postgresql", c.Name())
	assert.NoError(t, c.Check(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.ErrorContains(t, c.Check(context.Background()), "postgresql ping failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
