package view

import (
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
	for _, page := range []string{"auth/login", "announcements/list", "calendar/list", "resources/list", "curriculum/list", "dashboard/admin"} {
		assert.True(t, engine.Has(page), page)
	}
}

func TestPagesMayRedefineBlocks(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/layouts/base.html":   {Data: []byte(`{{define "layout"}}<h1>{{.Title}}</h1>{{template "content" .}}{{end}}`)},
		"templates/partials/flash.html": {Data: []byte(`{{define "flash"}}{{end}}`)},
		"templates/pages/a/one.html":    {Data: []byte(`{{define "content"}}one{{end}}`)},
		"templates/pages/b/two.html":    {Data: []byte(`{{define "content"}}two {{formatDate .Data}}{{end}}`)},
	}
	engine, err := newEngine(fsys)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, "a/one", TemplateData{Title: "A"}))
	assert.Equal(t, "<h1>A</h1>one", rec.Body.String())

	rec = httptest.NewRecorder()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, engine.Render(rec, "b/two", TemplateData{Title: "B", Data: day}))
	assert.Equal(t, "<h1>B</h1>two 15 Mar 2024", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	err = engine.Render(httptest.NewRecorder(), "missing", TemplateData{})
	assert.Error(t, err)
}

func TestTitleHelper(t *testing.T) {
	title := FuncMap()["title"].(func(string) string)
	assert.Equal(t, "Official", title("official"))
}
