package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/rollup"
)

// ErrInvalidInput is returned for malformed requests that never reach the
// hierarchy engine, such as an empty title.
var ErrInvalidInput = errors.New("invalid input")

// resolveNodeRef maps a user-supplied reference to a node ID: exact ID
// first, then a unique ID prefix, then a unique case-insensitive title.
func resolveNodeRef(g *domain.Graph, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty node reference", ErrInvalidInput)
	}
	if n := g.Node(ref); n != nil {
		return n.ID, nil
	}

	var byPrefix, byTitle []string
	for _, n := range g.Nodes {
		if strings.HasPrefix(n.ID, ref) {
			byPrefix = append(byPrefix, n.ID)
		}
		if strings.EqualFold(n.Title, ref) {
			byTitle = append(byTitle, n.ID)
		}
	}
	for _, matches := range [][]string{byPrefix, byTitle} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return "", fmt.Errorf("%w: %q matches %d nodes", ErrAmbiguousRef, ref, len(matches))
		}
	}
	return "", fmt.Errorf("node %q: %w", ref, rollup.ErrNodeNotFound)
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
