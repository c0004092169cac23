package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/repository"
	"github.com/alexanderramin/mediantree/internal/rollup"
)

// Workspace implements ProjectService and TaskService over one snapshot
// store. Every edit loads the snapshot, applies one mutation and its
// recomputation, and saves, all under a single lock, so recomputations
// never interleave.
type Workspace struct {
	snapshots repository.SnapshotRepo
	observer  UseCaseObserver
	mu        sync.Mutex
}

var (
	_ ProjectService = (*Workspace)(nil)
	_ TaskService    = (*Workspace)(nil)
)

func NewWorkspace(snapshots repository.SnapshotRepo, observers ...UseCaseObserver) *Workspace {
	return &Workspace{
		snapshots: snapshots,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (w *Workspace) Create(ctx context.Context, name, description string) (snap *domain.Snapshot, err error) {
	done := observe(ctx, w.observer, "create-project", map[string]any{"project": name})
	defer func() { done(err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.snapshots.Get(ctx, name); err == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrProjectExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking project: %w", err)
	}

	g := rollup.NewProjectGraph(name, description)
	if _, err := rollup.RecomputeHierarchy(g); err != nil {
		return nil, err
	}
	if err := w.snapshots.Save(ctx, name, g); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}
	return w.snapshots.Get(ctx, name)
}

func (w *Workspace) Get(ctx context.Context, name string) (*domain.Snapshot, error) {
	return w.snapshots.Get(ctx, name)
}

func (w *Workspace) Latest(ctx context.Context) (*domain.Snapshot, error) {
	return w.snapshots.Latest(ctx)
}

func (w *Workspace) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	return w.snapshots.List(ctx)
}

func (w *Workspace) Delete(ctx context.Context, name string) (err error) {
	done := observe(ctx, w.observer, "delete-project", map[string]any{"project": name})
	defer func() { done(err) }()

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshots.Delete(ctx, name)
}

func (w *Workspace) Add(ctx context.Context, project string, in AddTaskInput) (node *domain.Node, mr *MutationResult, err error) {
	fields := map[string]any{"project": project, "title": in.Title}
	done := observe(ctx, w.observer, "add-task", fields)
	defer func() { done(err) }()

	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}

	mr, err = w.mutate(ctx, project, func(g *domain.Graph) (*rollup.Result, error) {
		parentID := ""
		if in.Parent != "" {
			id, err := resolveNodeRef(g, in.Parent)
			if err != nil {
				return nil, err
			}
			parentID = id
		}
		n, res, err := rollup.AddTask(g, parentID, in.Title, in.Hours)
		if n != nil {
			n.Description = in.Description
			node = n
			fields["node"] = n.ID
		}
		return res, err
	})
	if mr == nil {
		return nil, nil, err
	}
	if saved := mr.Graph.Node(node.ID); saved != nil {
		node = saved
	}
	return node, mr, nil
}

func (w *Workspace) SetHours(ctx context.Context, project, nodeRef string, hours float64) (mr *MutationResult, err error) {
	done := observe(ctx, w.observer, "set-hours", map[string]any{"project": project, "node": nodeRef, "hours": hours})
	defer func() { done(err) }()

	return w.mutate(ctx, project, func(g *domain.Graph) (*rollup.Result, error) {
		id, err := resolveNodeRef(g, nodeRef)
		if err != nil {
			return nil, err
		}
		return rollup.SetHours(g, id, hours)
	})
}

func (w *Workspace) Link(ctx context.Context, project, parentRef, childRef string) (mr *MutationResult, err error) {
	done := observe(ctx, w.observer, "link", map[string]any{"project": project, "parent": parentRef, "child": childRef})
	defer func() { done(err) }()

	return w.mutate(ctx, project, func(g *domain.Graph) (*rollup.Result, error) {
		parentID, childID, err := resolvePair(g, parentRef, childRef)
		if err != nil {
			return nil, err
		}
		return rollup.Connect(g, parentID, childID)
	})
}

func (w *Workspace) Unlink(ctx context.Context, project, parentRef, childRef string) (mr *MutationResult, err error) {
	done := observe(ctx, w.observer, "unlink", map[string]any{"project": project, "parent": parentRef, "child": childRef})
	defer func() { done(err) }()

	return w.mutate(ctx, project, func(g *domain.Graph) (*rollup.Result, error) {
		parentID, childID, err := resolvePair(g, parentRef, childRef)
		if err != nil {
			return nil, err
		}
		return rollup.Disconnect(g, parentID, childID)
	})
}

func (w *Workspace) Remove(ctx context.Context, project, nodeRef string) (mr *MutationResult, err error) {
	done := observe(ctx, w.observer, "remove-node", map[string]any{"project": project, "node": nodeRef})
	defer func() { done(err) }()

	return w.mutate(ctx, project, func(g *domain.Graph) (*rollup.Result, error) {
		id, err := resolveNodeRef(g, nodeRef)
		if err != nil {
			return nil, err
		}
		return rollup.RemoveNode(g, id)
	})
}

// mutate runs fn against the stored graph and saves the outcome. fn signals
// an untouched graph by returning a nil Result; a non-nil Result with an
// error means the edit applied but part of the hierarchy was skipped.
func (w *Workspace) mutate(ctx context.Context, project string, fn func(g *domain.Graph) (*rollup.Result, error)) (*MutationResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap, err := w.snapshots.Get(ctx, project)
	if err != nil {
		return nil, err
	}

	res, err := fn(snap.Graph)
	if res == nil {
		return nil, err
	}
	if err := w.snapshots.Save(ctx, project, snap.Graph); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}
	saved, getErr := w.snapshots.Get(ctx, project)
	if getErr != nil {
		return nil, fmt.Errorf("reloading project: %w", getErr)
	}
	return &MutationResult{
		Snapshot: saved,
		Graph:    saved.Graph,
		Changed:  res.Changed,
		Skipped:  res.Skipped,
		Anomaly:  err,
	}, nil
}

func resolvePair(g *domain.Graph, parentRef, childRef string) (string, string, error) {
	parentID, err := resolveNodeRef(g, parentRef)
	if err != nil {
		return "", "", err
	}
	childID, err := resolveNodeRef(g, childRef)
	if err != nil {
		return "", "", err
	}
	return parentID, childID, nil
}
