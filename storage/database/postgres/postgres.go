// Package pgrepos implements the review store on PostgreSQL with sqlx and squirrel.
package pgrepos

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	ownerColumns    = []string{"id", "name", "role", "suspended", "created_at"}
	resourceColumns = []string{"id", "title", "description", "category", "owner_id", "flagged", "published_at"}
	reviewColumns   = []string{"id", "resource_id", "author", "rating", "comment", "created_at"}

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// prefixed returns `cols` qualified with the table alias.
func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

func pqCode(err error) string {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code)
	}
	return ""
}

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

// validUUID guards UUID columns: malformed IDs cannot exist, so they are reported as not found.
func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func storeErr(op string, err error) error {
	return core.NewStoreError("postgres: "+op, err)
}
