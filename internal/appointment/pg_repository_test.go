package appointment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapWriteErr(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		conflict bool
		busy     bool
	}{
		{"exclusion violation", &pgconn.PgError{Code: "23P01"}, true, false},
		{"wrapped exclusion violation", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23P01"}), true, false},
		{"serialization failure", &pgconn.PgError{Code: "40001", Message: "could not serialize access"}, false, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, false, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false, false},
		{"not a postgres error", plain, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWriteErr(tt.err)

			var conflict *ConflictError
			assert.Equal(t, tt.conflict, errors.As(got, &conflict))
			assert.Equal(t, tt.conflict, errors.Is(got, ErrConflict))
			assert.Equal(t, tt.busy, errors.Is(got, ErrDoctorBusy))
			if !tt.conflict && !tt.busy {
				assert.Same(t, tt.err, got)
			}
		})
	}
}
