package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonioLangiu/Ceedling/internal/config"
)

func TestLoader_LoadAllKeepsOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		ext := ".yml"
		body := fmt.Sprintf("index: %d\n", i)
		if i%2 == 0 {
			ext = ".toml"
			body = fmt.Sprintf("index = %d\n", i)
		}
		p := filepath.Join(dir, fmt.Sprintf("f%02d%s", i, ext))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		paths = append(paths, p)
	}

	trees, err := NewLoader(4).LoadAll(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, trees, len(paths))
	for i, tree := range trees {
		assert.Equal(t, int64(i), tree["index"], paths[i])
	}
}

func TestLoader_Empty(t *testing.T) {
	t.Parallel()

	trees, err := NewLoader(0).LoadAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, trees)
}

func TestLoader_FirstErrorReturned(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	l := NewLoader(1)
	l.load = func(path string) (config.Tree, error) {
		calls.Add(1)
		if path == "bad" {
			return nil, fmt.Errorf("cannot read %s", path)
		}
		return config.Tree{}, nil
	}

	_, err := l.LoadAll(context.Background(), []string{"ok", "bad", "later"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read bad")
	assert.LessOrEqual(t, calls.Load(), int32(3))
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(2).LoadAll(context.Background(), []string{filepath.Join(t.TempDir(), "nope.yml")})
	require.Error(t, err)
}
