package ops

import (
	"github.com/hpungsan/chronicle/internal/db"
	"github.com/hpungsan/chronicle/internal/errors"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []db.EntryRecord `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sort       string           `json:"sort"`
	LastRender *db.RenderRecord `json:"last_render,omitempty"`
}

// List retrieves indexed entries newest first with pagination.
func List(env *Env, input ListInput) (*ListOutput, error) {
	if env.DB == nil {
		return nil, errors.NewInternal(errIndexUnavailable)
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset := max(input.Offset, 0)

	items, total, err := db.ListEntries(env.DB, limit, offset)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	if items == nil {
		items = []db.EntryRecord{}
	}

	last, err := db.LatestRender(env.DB)
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort:       "date_desc",
		LastRender: last,
	}, nil
}
