package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/bahar-app/bahar/internal/apperr"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Timestamps are stored twice: an ISO-8601 string for readability and an
// epoch-milliseconds mirror for sort performance.
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

func formatISO(t time.Time) string {
	return t.UTC().Format(isoFormat)
}

func parseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// encodeJSON serializes v for a JSON text column. Nil or empty values are
// stored as NULL.
func encodeJSON(v any) (sql.NullString, error) {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}, nil
	case []string:
		if len(x) == 0 {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	if string(b) == "null" || string(b) == "[]" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// decodeJSON validates a stored JSON column against its expected shape. A
// NULL or empty column leaves dst untouched; a malformed one returns a
// parse_failed error and leaves the field absent.
func decodeJSON[T any](raw sql.NullString, what string, dst *T) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		return apperr.ParseFailed(what, err)
	}
	*dst = v
	return nil
}

func nullTimeISO(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatISO(*t), Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
