package postgres

import "github.com/jackc/pgx/v5/pgtype"

// textOrNull maps an empty string to a SQL NULL.
func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
