package repositories

import (
	"strconv"
	"strings"
)

// Dialect selects the SQL flavour of the backing database.
// Queries are written with "?" placeholders and rebound for Postgres.
type Dialect int

const (
	Sqlite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) rebind(q string) string {
	if d != Postgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) floatType() string {
	if d == Postgres {
		return "DOUBLE PRECISION"
	}
	return "REAL"
}
