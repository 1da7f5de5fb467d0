package country

import (
	"fmt"
	"strings"
)

// Country is referenced by tournaments and teams. Rows are effectively
// immutable once created.
type Country struct {
	ID    int64
	Title string
	Slug  string
}

func (c Country) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("country title is required")
	}
	if strings.TrimSpace(c.Slug) == "" {
		return fmt.Errorf("country slug is required")
	}
	return nil
}
