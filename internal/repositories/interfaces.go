package repositories

// ===== SHARED FILTER STRUCTS =====

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	SearchPageSize  = 20
)

type UserFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ScheduleFilters struct {
	// UserID scopes the listing to one owner; nil spans all owners.
	UserID *uint `json:"user_id"`
	// ActiveOnly keeps only lessons scheduled strictly in the future.
	ActiveOnly bool `json:"active_only"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

type MaterialFilters struct {
	UserID *uint `json:"user_id"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Normalize clamps pagination parameters to sane bounds.
func Normalize(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
