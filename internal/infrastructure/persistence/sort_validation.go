package persistence

import (
	"strings"

	"github.com/fitcoach/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProspectSortFields contains allowed sort fields for prospects
var ProspectSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"email":      true,
	"source":     true,
}

// BlogPostSortFields contains allowed sort fields for blog posts
var BlogPostSortFields = map[string]bool{
	"published_at": true,
	"created_at":   true,
	"title":        true,
}

const maxPageSize = 100

// paginate applies a whitelisted ORDER BY plus LIMIT/OFFSET
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	f := filter.Normalize(maxPageSize)
	field := ValidateSortField(f.OrderBy, allowed, defaultField)
	return query.
		Order(field + " " + ValidateSortOrder(f.OrderDir)).
		Limit(f.PageSize).
		Offset(f.Offset())
}
