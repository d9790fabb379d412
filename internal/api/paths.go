package api

import (
	"net/url"

	"github.com/nhle/taskboard/internal/model"
)

// escape renders an id as a single path segment.
func escape(id model.ID) string {
	return url.PathEscape(id.String())
}
