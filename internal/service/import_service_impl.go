package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/importer"
	"github.com/alexanderramin/mediantree/internal/repository"
)

type importService struct {
	workspace *Workspace
	observer  UseCaseObserver
}

// NewImportService creates an ImportService that stores imported projects
// through ws, sharing its lock.
func NewImportService(ws *Workspace, observers ...UseCaseObserver) ImportService {
	return &importService{workspace: ws, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportFile(ctx context.Context, path string, opts ImportOptions) (result *ImportResult, err error) {
	fields := map[string]any{"file": path, "format": opts.Format}
	done := observe(ctx, s.observer, "import-project", fields)
	defer func() { done(err) }()

	doc, err := importer.LoadFile(path, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	if errs := importer.Validate(doc); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	name := domain.CoalesceStr(strings.TrimSpace(opts.Name), doc.Project.Name, baseName(path))
	fields["project"] = name
	fields["task_count"] = len(doc.Tasks)

	conv, err := importer.Convert(doc, name)
	if err != nil {
		return nil, err
	}

	ws := s.workspace
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !opts.Replace {
		if _, err := ws.snapshots.Get(ctx, name); err == nil {
			return nil, fmt.Errorf("%q: %w", name, ErrProjectExists)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("checking project: %w", err)
		}
	}
	if err := ws.snapshots.Save(ctx, name, conv.Graph); err != nil {
		return nil, fmt.Errorf("saving imported project: %w", err)
	}
	snap, err := ws.snapshots.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Snapshot: snap, TaskCount: len(doc.Tasks), Reattached: conv.Reattached}, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
