package sections

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorForEveryDefinedType(t *testing.T) {
	for _, typ := range Types {
		ed := EditorFor(typ)
		assert.True(t, ed.Supported, typ)
		assert.Equal(t, typ, ed.Type)
		assert.NotEmpty(t, ed.Label)
		assert.NotEmpty(t, ed.Schema)
		require.NotNil(t, ed.Defaults, typ)
		assert.Equal(t, typ, ed.Defaults.SectionType())

		var buf bytes.Buffer
		require.NoError(t, ed.View(ed.NewConfig()).Render(context.Background(), &buf))
		assert.Contains(t, buf.String(), `data-section-type="`+string(typ)+`"`)
	}
}

func TestEditorForUnknownTypeIsPlaceholder(t *testing.T) {
	for _, typ := range []Type{"countdown", "", "HERO"} {
		ed := EditorFor(typ)
		assert.False(t, ed.Supported)
		assert.Nil(t, ed.NewConfig())

		var buf bytes.Buffer
		assert.NotPanics(t, func() {
			require.NoError(t, ed.View(nil).Render(context.Background(), &buf))
		})
		assert.Contains(t, buf.String(), "not supported yet")
	}
}

func TestEditorViewPanicsOnMismatchedConfig(t *testing.T) {
	ed := EditorFor(TypeHero)
	assert.Panics(t, func() {
		_ = ed.View(FAQConfig{})
	})
}

func TestEditorsListsTypesInOrder(t *testing.T) {
	eds := Editors()
	require.Len(t, eds, len(Types))
	for i, ed := range eds {
		assert.Equal(t, Types[i], ed.Type)
	}
}

func TestRenderEscapesContent(t *testing.T) {
	sec := Section{Type: TypeHero, Config: HeroConfig{
		Heading: `<script>alert(1)</script>`,
		CTA:     &Button{Label: "Go", URL: "javascript:alert(1)"},
	}}
	var buf bytes.Buffer
	require.NoError(t, Render(sec).Render(context.Background(), &buf))
	out := buf.String()
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}

func TestRenderPageSkipsDisabledAndKeepsOrder(t *testing.T) {
	secs := []Section{
		{Position: 2, Enabled: true, Type: TypeRichText, Config: RichTextConfig{Body: "third"}},
		{Position: 0, Enabled: true, Type: TypeRichText, Config: RichTextConfig{Body: "first"}},
		{Position: 1, Enabled: false, Type: TypeRichText, Config: RichTextConfig{Body: "hidden"}},
		{Position: 3, Enabled: true, Type: "countdown", Config: UnknownConfig{Kind: "countdown"}},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderPage(secs).Render(context.Background(), &buf))
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "third"))
	assert.Contains(t, out, "not supported yet")
}
