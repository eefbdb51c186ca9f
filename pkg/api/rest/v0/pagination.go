package v0_rest

import (
	"net/http"
	"strconv"

	"github.com/japap-media/server/pkg/scoopid"
)

const defaultPaginationLimit = 25

type PaginationOpts struct {
	Request *http.Request
}

// BeforeId is 0 when the first page is requested.
func (p PaginationOpts) BeforeId() scoopid.ScoopID {
	beforeId, err := strconv.ParseInt(p.Request.URL.Query().Get("before"), 10, 64)
	if err == nil && beforeId > 0 {
		return beforeId
	}

	return 0
}

func (p PaginationOpts) Limit() int64 {
	limit, err := strconv.ParseInt(p.Request.URL.Query().Get("limit"), 10, 64)
	if err == nil && limit > 0 {
		// limit the limit to 100
		if limit > 100 {
			return 100
		}

		return limit
	}

	return defaultPaginationLimit
}
