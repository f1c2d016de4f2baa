package tree

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/internal/testutil"
	"github.com/blobkit/transfer/transfertypes"
)

func timeZero() time.Time { return time.Time{} }

func TestNewRootHasPlaceholder(t *testing.T) {
	root := NewRoot()

	assert.False(t, root.Loaded)
	require.Len(t, root.Children, 1)
	assert.True(t, root.Children[0].IsPlaceholder())
	assert.Equal(t, "loading...", root.Children[0].Label())
}

func TestExpandRoot(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "readme.md", []byte("hello"))
	st.Seed("media", "photos/cat.jpg", []byte("img"))
	st.Seed("media", "photos/dog.jpg", []byte("img"))
	st.Seed("media", "videos/clip.mp4", []byte("vid"))

	root, err := ListRoot(context.Background(), st, "media")
	require.NoError(t, err)
	require.True(t, root.Loaded)

	// Directories sort before files.
	require.Len(t, root.Children, 3)
	assert.Equal(t, "photos", root.Children[0].Label())
	assert.Equal(t, "videos", root.Children[1].Label())
	assert.Equal(t, "readme.md", root.Children[2].Label())

	// Unloaded child directories carry the placeholder.
	photos := root.Children[0]
	assert.False(t, photos.Loaded)
	require.Len(t, photos.Children, 1)
	assert.True(t, photos.Children[0].IsPlaceholder())
}

func TestExpandIsIdempotent(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "a.txt", []byte("x"))

	root := NewRoot()
	require.NoError(t, root.Expand(context.Background(), st, "media"))
	require.NoError(t, root.Expand(context.Background(), st, "media"))
	require.NoError(t, root.Expand(context.Background(), st, "media"))

	assert.Equal(t, 1, st.Calls("ListDirect"))
	assert.Len(t, root.Children, 1)
}

func TestExpandFiltersDeeperEntries(t *testing.T) {
	// Stores may return entries below the requested level; only the
	// suffix delimiter count decides membership.
	st := testutil.NewFakeStore()
	st.ListDirectFunc = func(_ context.Context, _, prefix string) ([]*transfertypes.ObjectEntry, error) {
		return []*transfertypes.ObjectEntry{
			transfertypes.NewFileEntry("docs/a.txt", 1, timeZero(), ""),
			transfertypes.NewDirEntry("docs/sub/"),
			transfertypes.NewFileEntry("docs/sub/deep.txt", 1, timeZero(), ""),
			transfertypes.NewDirEntry("docs/sub/deeper/"),
			transfertypes.NewDirEntry("docs/"),
		}, nil
	}

	node := &Node{Entry: transfertypes.NewDirEntry("docs/")}
	require.NoError(t, node.Expand(context.Background(), st, "media"))

	require.Len(t, node.Children, 2)
	assert.Equal(t, "docs/sub/", node.Children[0].Entry.Key)
	assert.Equal(t, "docs/a.txt", node.Children[1].Entry.Key)
}

func TestExpandEmptyDirectory(t *testing.T) {
	st := testutil.NewFakeStore()

	root, err := ListRoot(context.Background(), st, "empty-container")
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	assert.True(t, root.Children[0].IsEmptyMarker())
	assert.Equal(t, "(no items)", root.Children[0].Label())
}

func TestExpandFileNodeFails(t *testing.T) {
	st := testutil.NewFakeStore()
	node := &Node{Entry: transfertypes.NewFileEntry("a.txt", 1, timeZero(), "")}

	err := node.Expand(context.Background(), st, "media")
	require.Error(t, err)
	assert.True(t, errors.IsNotDirectory(err))
}

func TestExpandListingFailure(t *testing.T) {
	st := testutil.NewFakeStore()
	st.ListDirectFunc = func(context.Context, string, string) ([]*transfertypes.ObjectEntry, error) {
		return nil, fmt.Errorf("throttled")
	}

	root := NewRoot()
	err := root.Expand(context.Background(), st, "media")
	require.Error(t, err)

	// The node still ends up loaded with the empty marker so a UI has
	// something to render alongside the warning.
	assert.True(t, root.Loaded)
	require.Len(t, root.Children, 1)
	assert.True(t, root.Children[0].IsEmptyMarker())
}

func TestRefreshReloads(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "a.txt", []byte("x"))

	root, err := ListRoot(context.Background(), st, "media")
	require.NoError(t, err)
	require.Len(t, root.Children, 1)

	st.Seed("media", "b.txt", []byte("y"))
	require.NoError(t, root.Refresh(context.Background(), st, "media"))

	require.Len(t, root.Children, 2)
	assert.Equal(t, "a.txt", root.Children[0].Label())
	assert.Equal(t, "b.txt", root.Children[1].Label())
}

func TestRefreshFileNodeFails(t *testing.T) {
	st := testutil.NewFakeStore()
	node := &Node{Entry: transfertypes.NewFileEntry("a.txt", 1, timeZero(), "")}

	err := node.Refresh(context.Background(), st, "media")
	assert.True(t, errors.IsNotDirectory(err))
}
