package dbx

import (
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// RowMapper converts the current row of a cursor into a typed value. It is
// supplied by the caller per query; its errors propagate untranslated.
type RowMapper[T any] func(rows pgx.Rows) (T, error)

// StructMapper builds a stock RowMapper that scans each row into a struct T,
// matching result columns against `db` field tags. Columns without a matching
// tagged field are discarded; tagged fields without a matching column keep
// their zero value.
//
// Example:
//
//	type User struct {
//	    ID   int64  `db:"id"`
//	    Name string `db:"name"`
//	}
//	users, err := dbx.QueryAll(ctx, ex, "SELECT id, name FROM users ORDER BY id", dbx.StructMapper[User]())
func StructMapper[T any]() RowMapper[T] {
	structType := reflect.TypeOf((*T)(nil)).Elem()

	fieldsByTag := make(map[string]int)

	if structType.Kind() == reflect.Struct {
		for i := 0; i < structType.NumField(); i++ {
			field := structType.Field(i)

			// Skip unexported fields
			if field.PkgPath != "" {
				continue
			}

			dbTag := field.Tag.Get("db")
			if dbTag != "" && dbTag != "-" {
				fieldsByTag[dbTag] = i
			}
		}
	}

	return func(rows pgx.Rows) (T, error) {
		var out T

		if structType.Kind() != reflect.Struct {
			return out, errors.New("StructMapper requires a struct type")
		}

		target := reflect.ValueOf(&out).Elem()
		descriptions := rows.FieldDescriptions()

		dests := make([]any, len(descriptions))

		var discard any

		for i, desc := range descriptions {
			if fieldIdx, ok := fieldsByTag[desc.Name]; ok {
				dests[i] = target.Field(fieldIdx).Addr().Interface()
			} else {
				dests[i] = &discard
			}
		}

		if err := rows.Scan(dests...); err != nil {
			return out, err
		}

		return out, nil
	}
}
