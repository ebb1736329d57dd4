package user

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolationByConstraint(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"users_email_key", ErrEmailTaken},
		{"users_organization_id_employee_number_key", ErrEmployeeNumberTaken},
	}
	for _, tc := range cases {
		got := uniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: tc.constraint})
		if !errors.Is(got, tc.want) {
			t.Fatalf("uniqueViolation(%q) = %v, want %v", tc.constraint, got, tc.want)
		}
	}
}
