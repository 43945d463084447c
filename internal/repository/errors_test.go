package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/inn-guest-registry/internal/model"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(sql.ErrNoRows), model.ErrNotFound)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: errDupEntry}), model.ErrConflict)
	assert.ErrorIs(t, translate(&mysql.MySQLError{Number: errNoRefRow}), model.ErrNotFound)

	deadlock := &mysql.MySQLError{Number: errDeadlock}
	assert.Same(t, deadlock, translate(deadlock))
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &mysql.MySQLError{Number: errDeadlock}, true},
		{"lock wait timeout", &mysql.MySQLError{Number: errLockWait}, true},
		{"wrapped deadlock", fmt.Errorf("insert stay: %w", &mysql.MySQLError{Number: errDeadlock}), true},
		{"duplicate key", &mysql.MySQLError{Number: errDupEntry}, false},
		{"domain error", model.ErrConflict, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, retryable(tc.err))
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}
