// Package filters builds the working set for list endpoints.
//
// Each list is a Pipeline: narrowing stages applied strictly in order
// (visibility first, then explicit filters, then search) followed by an
// ordering. Stages are gorm scopes so the same pipeline drives both the
// count and the page query.
package filters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"payment-tracker-api/apperr"

	"gorm.io/gorm"
)

// Scope narrows or orders a query.
type Scope = func(*gorm.DB) *gorm.DB

// Pipeline is an ordered list of narrowing stages plus a final ordering.
type Pipeline struct {
	stages []Scope
	order  Scope
}

func (p *Pipeline) add(s Scope) {
	if s != nil {
		p.stages = append(p.stages, s)
	}
}

// Filter applies the narrowing stages, without ordering. Use it for counts
// and aggregates.
func (p Pipeline) Filter(db *gorm.DB) *gorm.DB {
	for _, s := range p.stages {
		db = s(db)
	}
	return db
}

// Apply applies the narrowing stages followed by the ordering.
func (p Pipeline) Apply(db *gorm.DB) *gorm.DB {
	db = p.Filter(db)
	if p.order != nil {
		db = p.order(db)
	}
	return db
}

// Len is the number of narrowing stages in effect.
func (p Pipeline) Len() int { return len(p.stages) }

// none yields an empty result set.
func none(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// ordering resolves a client ordering string such as "-date,amount" against
// a whitelist of field -> SQL expression. An empty value selects def. A
// trailing key on tiebreak keeps pages stable.
func ordering(raw, def string, allowed map[string]string, tiebreak string) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = def
	}
	var terms []string
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		expr, ok := allowed[field]
		if !ok {
			return nil, apperr.Validation("ordering", "unknown ordering field %q", field)
		}
		terms = append(terms, expr+" "+dir)
	}
	if len(terms) == 0 {
		return nil, nil
	}
	if tiebreak != "" {
		last := terms[len(terms)-1]
		terms = append(terms, tiebreak+" "+last[strings.LastIndexByte(last, ' ')+1:])
	}
	return func(db *gorm.DB) *gorm.DB {
		for _, t := range terms {
			db = db.Order(t)
		}
		return db
	}, nil
}

// likePattern lower-cases term and escapes LIKE wildcards.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

// ilike is a portable case-insensitive LIKE clause for column.
func ilike(column string) string {
	return fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column)
}

const dateLayout = "2006-01-02"

// DateRange restricts column to [start 00:00:00, end 23:59:59.999999] when
// both dates parse. Anything else leaves the set unfiltered.
func DateRange(column, start, end string) Scope {
	if start == "" || end == "" {
		return nil
	}
	from, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return nil
	}
	to, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return nil
	}
	to = to.Add(24*time.Hour - time.Microsecond)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" BETWEEN ? AND ?", from, to)
	}
}

// ActiveFlag filters on an is_active column when raw parses as a boolean.
func ActiveFlag(column, raw string) Scope {
	if raw == "" {
		return nil
	}
	active, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", active)
	}
}
