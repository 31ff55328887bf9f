package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/notetoken/internal/content"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenizeArgsJSON(t *testing.T) {
	out, err := execute(t, "", "--format", "json", "--tags", `[["t","nostr"]]`, "gm", "#nostr")
	require.NoError(t, err)

	var spans []content.Span
	require.NoError(t, json.Unmarshal([]byte(out), &spans))
	require.Len(t, spans, 2)
	assert.Equal(t, "gm ", spans[0].Text)
	assert.Equal(t, content.Hashtag, spans[1].Kind)
}

func TestTokenizeStdinWithKindFilter(t *testing.T) {
	out, err := execute(t, "see https://example.com and :wave:\n", "--kind", "url", "--kind", "custom_emoji")
	require.NoError(t, err)

	var spans []content.Span
	require.NoError(t, json.Unmarshal([]byte(out), &spans))
	require.Len(t, spans, 2)
	assert.Equal(t, content.Link, spans[0].Kind)
	assert.Equal(t, content.CustomEmoji, spans[1].Kind)
}

func TestTokenizeTable(t *testing.T) {
	out, err := execute(t, "", "--format", "table", "hi :wave:")
	require.NoError(t, err)
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "custom_emoji")
	assert.Contains(t, out, "name=wave")
}

func TestTokenizeRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "", "--tags", "{", "x")
	assert.Error(t, err)

	_, err = execute(t, "", "--kind", "nope", "x")
	assert.Error(t, err)

	_, err = execute(t, "", "--format", "yaml", "x")
	assert.Error(t, err)
}

func TestKindsCommand(t *testing.T) {
	out, err := execute(t, "", "kinds")
	require.NoError(t, err)
	assert.Contains(t, out, "legacy_reference")
	assert.Contains(t, out, "15")
}
