package importer

import (
	"fmt"
	"math"
)

// Validate checks the document for errors before conversion.
// Returns a slice of all validation errors found.
func Validate(doc *Document) []error {
	var errs []error

	ids := make(map[string]bool, len(doc.Tasks))
	for i, t := range doc.Tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", prefix))
		} else if ids[t.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id %q", prefix, t.ID))
		}
		ids[t.ID] = true

		if t.Title == "" {
			errs = append(errs, fmt.Errorf("%s: title is required", prefix))
		}
		if t.Parent != "" && t.Parent == t.ID {
			errs = append(errs, fmt.Errorf("%s: task %q cannot be its own parent", prefix, t.ID))
		}
		if t.Hours != nil {
			h := *t.Hours
			if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
				errs = append(errs, fmt.Errorf("%s: hours must be a non-negative number, got %v", prefix, h))
			}
		}
	}
	return errs
}
