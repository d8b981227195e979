package summarize

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTreeDepth is used when no depth is requested.
	DefaultTreeDepth = 2
	// MinTreeDepth and MaxTreeDepth bound the requested depth.
	MinTreeDepth = 1
	MaxTreeDepth = 5

	defaultTreeConcurrency = 4
)

// ClampDepth maps a requested depth into [MinTreeDepth, MaxTreeDepth].
// Zero selects DefaultTreeDepth.
func ClampDepth(depth int) int {
	switch {
	case depth == 0:
		return DefaultTreeDepth
	case depth < MinTreeDepth:
		return MinTreeDepth
	case depth > MaxTreeDepth:
		return MaxTreeDepth
	}
	return depth
}

// FolderFetcher returns the decoded contents of one folder.
type FolderFetcher interface {
	FolderContents(ctx context.Context, projectID, folderID string) (*Document, error)
}

// FolderFetcherFunc adapts a function to FolderFetcher.
type FolderFetcherFunc func(ctx context.Context, projectID, folderID string) (*Document, error)

// FolderContents implements FolderFetcher.
func (f FolderFetcherFunc) FolderContents(ctx context.Context, projectID, folderID string) (*Document, error) {
	return f(ctx, projectID, folderID)
}

// TreeNode is a folder in the tree. Truncated nodes were not expanded
// because the depth limit was reached.
type TreeNode struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Files     []string   `json:"files,omitempty"`
	FileCount int        `json:"file_count"`
	Children  []TreeNode `json:"children,omitempty"`
	Truncated bool       `json:"truncated,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// TreeBuilder expands a folder hierarchy level by level.
type TreeBuilder struct {
	fetcher     FolderFetcher
	concurrency int
}

// NewTreeBuilder creates a builder. A non-positive concurrency uses the default.
func NewTreeBuilder(fetcher FolderFetcher, concurrency int) *TreeBuilder {
	if concurrency <= 0 {
		concurrency = defaultTreeConcurrency
	}
	return &TreeBuilder{fetcher: fetcher, concurrency: concurrency}
}

// Build expands folderID up to maxDepth levels. The root counts as level 1,
// so maxDepth 1 fetches only the root and returns its subfolders as
// truncated leaves. A failure on the root is returned; failures below it are
// recorded on the affected node.
func (b *TreeBuilder) Build(ctx context.Context, projectID, folderID, name string, maxDepth int) (*TreeNode, error) {
	maxDepth = ClampDepth(maxDepth)
	root := TreeNode{ID: folderID, Name: name}
	if err := b.expand(ctx, projectID, &root, 1, maxDepth); err != nil {
		return nil, err
	}
	return &root, nil
}

func (b *TreeBuilder) expand(ctx context.Context, projectID string, node *TreeNode, depth, maxDepth int) error {
	doc, err := b.fetcher.FolderContents(ctx, projectID, node.ID)
	if err != nil {
		return err
	}

	contents := Contents(doc, ContentsOptions{})
	for _, f := range contents.Files {
		node.Files = append(node.Files, f.Name)
	}
	node.FileCount = len(contents.Files)

	node.Children = make([]TreeNode, len(contents.Folders))
	for i, f := range contents.Folders {
		node.Children[i] = TreeNode{ID: f.ID, Name: f.Name, Truncated: depth >= maxDepth}
	}
	if depth >= maxDepth || len(node.Children) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i := range node.Children {
		child := &node.Children[i]
		g.Go(func() error {
			err := b.expand(gctx, projectID, child, depth+1, maxDepth)
			if err == nil {
				return nil
			}
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			child.Error = err.Error()
			return nil
		})
	}
	return g.Wait()
}
