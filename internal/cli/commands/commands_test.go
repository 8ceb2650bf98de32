package commands

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"UniversalInbox/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var capturedRe = regexp.MustCompile(`Captured ([0-9a-f-]{36})`)

func capture(t *testing.T, cfg *config.Config, text ...string) string {
	t.Helper()
	code, out := run(t, cfg, append([]string{"capture"}, text...)...)
	require.Equal(t, 0, code, out)
	m := capturedRe.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	return m[1]
}

func TestCapture_ThenInboxAndItems(t *testing.T) {
	cfg := withTempConfig(t)

	capture(t, cfg, "buy", "oat", "milk")
	capture(t, cfg, "call mom")

	code, out := run(t, cfg, "inbox")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "buy oat milk")
	assert.Contains(t, out, "call mom")
	assert.Contains(t, out, "Total: 2")
	// новые сверху
	assert.Less(t, strings.Index(out, "call mom"), strings.Index(out, "buy oat milk"))

	code, out = run(t, cfg, "items")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "[inbox]")
}

func TestCapture_Usage(t *testing.T) {
	cfg := withTempConfig(t)
	code, out := run(t, cfg, "capture")
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "Usage: capture <text...>")

	code, out = run(t, cfg, "capture", "   ")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "please enter some text")
}

func TestMove_ByBinName(t *testing.T) {
	cfg := withTempConfig(t)
	id := capture(t, cfg, "write blog post")

	code, out := run(t, cfg, "move", id[:8], "ideas")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Moved")
	assert.Contains(t, out, "Ideas")

	code, out = run(t, cfg, "inbox")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Inbox is empty")

	code, out = run(t, cfg, "items", "Ideas")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "write blog post")
	assert.Contains(t, out, "[processed/Ideas]")

	code, out = run(t, cfg, "bins")
	require.Equal(t, 0, code)
	assert.Regexp(t, `Ideas\s+1`, out)
	assert.Regexp(t, `Tasks\s+0`, out)
}

func TestMove_Errors(t *testing.T) {
	cfg := withTempConfig(t)
	id := capture(t, cfg, "x")

	code, out := run(t, cfg, "move", id, "no-such-bin")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "bin not found")

	code, out = run(t, cfg, "move", "ffffffff-none", "Tasks")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "item not found")

	code, _ = run(t, cfg, "move", id)
	assert.Equal(t, 2, code)
}

func TestDelete(t *testing.T) {
	cfg := withTempConfig(t)
	id := capture(t, cfg, "temporary")

	code, out := run(t, cfg, "delete", id)
	require.Equal(t, 0, code, out)

	code, out = run(t, cfg, "items")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No items")

	code, _ = run(t, cfg, "delete", id)
	assert.Equal(t, 1, code)
}

func TestDraft_SetShowAndClearedByCapture(t *testing.T) {
	cfg := withTempConfig(t)

	_, out := run(t, cfg, "draft")
	assert.Contains(t, out, "Draft is empty")

	code, _ := run(t, cfg, "draft", "half", "a", "thought")
	require.Equal(t, 0, code)

	_, out = run(t, cfg, "draft")
	assert.Equal(t, "half a thought\n", out)

	capture(t, cfg, "half a thought")
	_, out = run(t, cfg, "draft")
	assert.Contains(t, out, "Draft is empty")
}

func TestKey_SetShowClear(t *testing.T) {
	cfg := withTempConfig(t)

	_, out := run(t, cfg, "key", "show")
	assert.Contains(t, out, "<not set>")

	code, out := run(t, cfg, "key", "set", "sk-abcdef123456")
	require.Equal(t, 0, code, out)

	_, out = run(t, cfg, "key", "show")
	assert.Contains(t, out, "****3456")
	assert.NotContains(t, out, "sk-abcdef")

	code, _ = run(t, cfg, "key", "clear")
	require.Equal(t, 0, code)
	_, out = run(t, cfg, "key", "show")
	assert.Contains(t, out, "<not set>")

	code, _ = run(t, cfg, "key", "set", "has space")
	assert.Equal(t, 1, code)

	code, _ = run(t, cfg, "key", "rotate")
	assert.Equal(t, 2, code)
}

func TestStatus(t *testing.T) {
	cfg := withTempConfig(t)
	code, out := run(t, cfg, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "none (local only)")
	assert.Contains(t, out, "Saved:    never")

	capture(t, cfg, "first")
	code, out = run(t, cfg, "status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Saved:    ")
	assert.NotContains(t, out, "never")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()
	cfg.RemoteBackend = config.RemoteHTTP
	cfg.ServerURL = ts.URL
	code, out = run(t, cfg, "status")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "ok")

	ts500 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts500.Close()
	cfg.ServerURL = ts500.URL
	code, _ = run(t, cfg, "status")
	assert.Equal(t, 1, code)
}

func TestPreviewAndMask(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "first …", preview("first\nsecond", 10))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
	assert.Equal(t, "****", maskKey("abc"))
	assert.Equal(t, "****wxyz", maskKey("abcwxyz"))
	assert.Equal(t, "<not set>", maskKey(""))
}
