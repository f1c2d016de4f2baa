// Package tree builds a lazily-loaded virtual directory tree on top of a
// flat object-store namespace. Directories exist only as key prefixes;
// nodes are expanded one level at a time so arbitrarily large containers
// stay cheap to browse.
package tree

import (
	"context"
	"sort"
	"strings"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/store"
	"github.com/blobkit/transfer/transfertypes"
)

const (
	placeholderLabel = "loading..."
	emptyLabel       = "(no items)"
)

type sentinel int

const (
	sentinelNone sentinel = iota
	sentinelPlaceholder
	sentinelEmpty
)

// Node is one entry in the virtual tree. File nodes never have children.
// Unloaded directory nodes carry exactly one placeholder child so a UI can
// render them as expandable before anything has been fetched.
type Node struct {
	// Entry is the underlying object entry. Nil for sentinel nodes.
	Entry *transfertypes.ObjectEntry

	// Children is ordered: directories first, then files, each group
	// sorted by key. Meaningful only once Loaded is true.
	Children []*Node

	// Loaded reports whether Children reflects the store.
	Loaded bool

	kind sentinel
}

// NewRoot returns an unloaded directory node for the container root.
func NewRoot() *Node {
	return newDirNode(transfertypes.NewDirEntry(""))
}

func newDirNode(entry *transfertypes.ObjectEntry) *Node {
	return &Node{
		Entry:    entry,
		Children: []*Node{newPlaceholder()},
	}
}

func newFileNode(entry *transfertypes.ObjectEntry) *Node {
	return &Node{Entry: entry, Loaded: true}
}

func newPlaceholder() *Node {
	return &Node{kind: sentinelPlaceholder, Loaded: true}
}

func newEmpty() *Node {
	return &Node{kind: sentinelEmpty, Loaded: true}
}

// IsPlaceholder reports whether the node is the placeholder child of an
// unloaded directory.
func (n *Node) IsPlaceholder() bool { return n.kind == sentinelPlaceholder }

// IsEmptyMarker reports whether the node is the "no items" marker inside a
// loaded directory with no children.
func (n *Node) IsEmptyMarker() bool { return n.kind == sentinelEmpty }

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.Entry != nil && n.Entry.IsDir }

// Label returns the display name for the node.
func (n *Node) Label() string {
	switch n.kind {
	case sentinelPlaceholder:
		return placeholderLabel
	case sentinelEmpty:
		return emptyLabel
	default:
		return n.Entry.Name()
	}
}

// Expand loads the node's direct children from the store. It is a no-op on
// an already-loaded node, so repeated expansion never refetches. Expanding
// a file node fails with ErrNotDirectory. A listing failure leaves the node
// loaded with the empty marker and returns the error; callers treat it as a
// warning rather than aborting the walk.
func (n *Node) Expand(ctx context.Context, st store.Client, container string) error {
	if n.Entry == nil || !n.Entry.IsDir {
		key := ""
		if n.Entry != nil {
			key = n.Entry.Key
		}
		return errors.NewObjectError("expand", container, key, errors.ErrNotDirectory)
	}
	if n.Loaded {
		return nil
	}

	prefix := n.Entry.Key
	entries, err := st.ListDirect(ctx, container, prefix)
	if err != nil {
		n.Children = []*Node{newEmpty()}
		n.Loaded = true
		return errors.NewObjectError("expand", container, prefix, err)
	}

	n.Children = buildChildren(prefix, entries)
	n.Loaded = true
	return nil
}

// Refresh discards the node's children and reloads them from the store.
func (n *Node) Refresh(ctx context.Context, st store.Client, container string) error {
	if n.Entry == nil || !n.Entry.IsDir {
		return errors.NewContainerError("refresh", container, errors.ErrNotDirectory)
	}
	n.Loaded = false
	n.Children = []*Node{newPlaceholder()}
	return n.Expand(ctx, st, container)
}

// ListRoot fetches the container's top level and returns the loaded root.
func ListRoot(ctx context.Context, st store.Client, container string) (*Node, error) {
	root := NewRoot()
	if err := root.Expand(ctx, st, container); err != nil {
		return root, err
	}
	return root, nil
}

// buildChildren keeps only entries exactly one level below prefix. Stores
// may hand back deeper entries; the suffix delimiter count is what decides
// membership, not the store's notion of a level.
func buildChildren(prefix string, entries []*transfertypes.ObjectEntry) []*Node {
	var dirs, files []*Node
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		suffix := strings.TrimPrefix(e.Key, prefix)
		if suffix == "" {
			continue
		}
		if _, ok := seen[e.Key]; ok {
			continue
		}
		if e.IsDir {
			trimmed := strings.TrimSuffix(suffix, store.Delimiter)
			if strings.Contains(trimmed, store.Delimiter) {
				continue
			}
			seen[e.Key] = struct{}{}
			dirs = append(dirs, newDirNode(e))
		} else {
			if strings.Contains(suffix, store.Delimiter) {
				continue
			}
			seen[e.Key] = struct{}{}
			files = append(files, newFileNode(e))
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Entry.Key < dirs[j].Entry.Key })
	sort.Slice(files, func(i, j int) bool { return files[i].Entry.Key < files[j].Entry.Key })

	children := append(dirs, files...)
	if len(children) == 0 {
		return []*Node{newEmpty()}
	}
	return children
}
