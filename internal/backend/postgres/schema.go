package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/newsinsight/internal/common"
	"github.com/dmitrijs2005/newsinsight/internal/models"
	"github.com/dmitrijs2005/newsinsight/internal/query"
)

// tables lists the readable tables and their columns, in declaration order.
// Only names found here are ever interpolated into SQL.
var tables = map[string][]string{
	models.TableUserProfiles:  {"id", "email", "username", "trust_points", "verifications_count", "created_at", "avatar_url"},
	models.TableNewsItems:     {"id", "title", "content", "source", "verified", "trust_score", "category", "created_at", "updated_at"},
	models.TableTrustMetrics:  {"id", "metric_name", "score", "timestamp"},
	models.TableRumors:        {"id", "content", "source", "status", "trust_score", "votes_count", "created_at"},
	models.TableVerifications: {"id", "news_item_id", "user_id", "is_verified", "created_at"},
}

func hasColumn(table, column string) bool {
	for _, c := range tables[table] {
		if c == column {
			return true
		}
	}
	return false
}

func unknownTable(table string) *common.APIError {
	return common.NewAPIError(fmt.Sprintf("relation %q does not exist", table), common.ErrorUnknownTable)
}

func unknownColumn(table, column string) *common.APIError {
	return common.NewAPIError(fmt.Sprintf("column %s.%s does not exist", table, column), common.ErrorUnknownColumn)
}

// projection validates a select list such as "*" or "id, title".
func projection(table, columns string) (string, *common.APIError) {
	columns = strings.TrimSpace(columns)
	if columns == "" || columns == query.AllColumns {
		return query.AllColumns, nil
	}
	parts := strings.Split(columns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		c := strings.TrimSpace(p)
		if !hasColumn(table, c) {
			return "", unknownColumn(table, c)
		}
		out = append(out, quoteIdent(c))
	}
	return strings.Join(out, ", "), nil
}

// buildSelect renders req into a query returning one JSON document: an
// array, or for Single the first object (NULL when nothing matches).
func buildSelect(req query.Request) (string, []any, *common.APIError) {
	if _, ok := tables[req.Table]; !ok {
		return "", nil, unknownTable(req.Table)
	}

	cols, apiErr := projection(req.Table, req.Columns)
	if apiErr != nil {
		return "", nil, apiErr
	}

	var sb strings.Builder
	args := make([]any, 0, len(req.Filters))

	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(req.Table))

	for i, f := range req.Filters {
		if !hasColumn(req.Table, f.Column) {
			return "", nil, unknownColumn(req.Table, f.Column)
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(quoteIdent(f.Column))
		if f.Value == nil {
			sb.WriteString(" IS NULL")
			continue
		}
		args = append(args, fmt.Sprint(f.Value))
		sb.WriteString("::text = $")
		sb.WriteString(strconv.Itoa(len(args)))
	}

	if req.Order != nil {
		if !hasColumn(req.Table, req.Order.Column) {
			return "", nil, unknownColumn(req.Table, req.Order.Column)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(quoteIdent(req.Order.Column))
		if req.Order.Ascending {
			sb.WriteString(" ASC")
		} else {
			sb.WriteString(" DESC")
		}
	}

	limit := req.Limit
	if req.Single {
		limit = 1
	}
	if limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(limit))
	}

	if req.Single {
		return "SELECT json_agg(t)->0 FROM (" + sb.String() + ") t", args, nil
	}
	return "SELECT coalesce(json_agg(t), '[]'::json) FROM (" + sb.String() + ") t", args, nil
}

// buildInsert renders an insert of the given columns from a JSON array
// parameter, returning the inserted rows as a JSON array.
func buildInsert(table string, columns []string) (string, *common.APIError) {
	if _, ok := tables[table]; !ok {
		return "", unknownTable(table)
	}
	quoted := make([]string, 0, len(columns))
	for _, c := range columns {
		if !hasColumn(table, c) {
			return "", unknownColumn(table, c)
		}
		quoted = append(quoted, quoteIdent(c))
	}
	list := strings.Join(quoted, ", ")
	t := quoteIdent(table)

	return "WITH ins AS (INSERT INTO " + t + " (" + list + ") SELECT " + list +
		" FROM json_populate_recordset(NULL::" + t + ", $1::json) RETURNING *)" +
		" SELECT coalesce(json_agg(ins), '[]'::json) FROM ins", nil
}

func quoteIdent(s string) string {
	return `"` + s + `"`
}
