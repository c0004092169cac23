package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/mediantree/internal/repository"
)

// resolveProject returns name, or the most recently updated project when
// name is empty.
func resolveProject(ctx context.Context, app *App, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	snap, err := app.Projects.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("no projects yet; pass --project or create one with: mediantree project new")
		}
		return "", err
	}
	return snap.Name, nil
}
