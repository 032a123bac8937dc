package assetproto

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yosida95/uritemplate/v3"
)

func TestResourceTemplate(t *testing.T) {
	assert.Equal(t, "app://local/{+path}", resourceTemplate("app://local"))
	assert.Equal(t, "app://local/{+path}", resourceTemplate("app://local/"))
}

func TestRegisterResources(t *testing.T) {
	root := newTestBundle(t, map[string]string{"index.html": "<html></html>"})
	r, err := NewResolver(testHostPrefix, root)
	require.NoError(t, err)

	server := mcp.NewServer(&mcp.Implementation{Name: "test-server", Version: "1.0.0"}, nil)
	assert.NoError(t, RegisterResources(server, r))
}

func TestCreateResourceHandler(t *testing.T) {
	root := newTestBundle(t, map[string]string{
		"index.html":      "<html></html>",
		"style.css":       "body{color:red}",
		"static/logo.png": "\x89PNG",
	})
	r, err := NewResolver(testHostPrefix, root)
	require.NoError(t, err)

	tmpl, err := uritemplate.New(resourceTemplate(testHostPrefix))
	require.NoError(t, err)
	handler := createResourceHandler(r, tmpl)

	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return handler(context.Background(), &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: uri},
		})
	}

	t.Run("serves entry point for bare origin", func(t *testing.T) {
		result, err := read("app://local/")
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/html", result.Contents[0].MIMEType)
		assert.Equal(t, "<html></html>", result.Contents[0].Text)
	})

	t.Run("serves text file", func(t *testing.T) {
		result, err := read("app://local/style.css")
		require.NoError(t, err)
		content := result.Contents[0]
		assert.Equal(t, "app://local/style.css", content.URI)
		assert.Equal(t, "text/css", content.MIMEType)
		assert.Equal(t, "body{color:red}", content.Text)
		assert.Nil(t, content.Blob)
	})

	t.Run("serves binary file as blob", func(t *testing.T) {
		result, err := read("app://local/static/logo.png")
		require.NoError(t, err)
		content := result.Contents[0]
		assert.Equal(t, "image/png", content.MIMEType)
		assert.Equal(t, []byte("\x89PNG"), content.Blob)
		assert.Empty(t, content.Text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := read("app://local/missing.json")
		assert.Error(t, err)
	})

	t.Run("traversal", func(t *testing.T) {
		_, err := read("app://local/../../etc/passwd")
		assert.Error(t, err)
	})

	t.Run("foreign uri", func(t *testing.T) {
		_, err := read("ui://query-results/index.html")
		assert.Error(t, err)
	})
}
