package utils

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// MaxPageSize caps any requested page size.
const MaxPageSize = 100

// maxOffset bounds the row offset; pages past it are clamped and come back
// empty.
const maxOffset = math.MaxInt32

// Pagination holds pagination parameters.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination reads page and limit query params, using defaultLimit when
// limit is missing or not positive.
func ParsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	return NewPagination(
		parseInt(c.Query("page"), 1),
		parseInt(c.Query("limit"), defaultLimit),
		defaultLimit,
	)
}

// NewPagination normalises page and limit.
func NewPagination(page, limit, defaultLimit int) Pagination {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	if page-1 > maxOffset/limit {
		page = maxOffset/limit + 1
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
