package cmd

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creatorhub/pkg/wav"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CREATORHUB_CONFIG", "GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_MAX_ATTEMPTS",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Chdir(t.TempDir())
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func fakeAPI(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("GEMINI_API_KEY", "cli-key")
	t.Setenv("GEMINI_BASE_URL", srv.URL)
}

func TestPresetsCommand(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "", "presets")
	require.NoError(t, err)
	for _, want := range []string{"Type", "sermon", "Sermon", "devotional"} {
		assert.Contains(t, out, want)
	}
}

func TestVoicesCommand(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "", "voices")
	require.NoError(t, err)
	assert.Contains(t, out, "Kore")
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "Zubenelgenubi")
}

func TestGenerateCommand_UsesPreset(t *testing.T) {
	isolateEnv(t)
	var gotPrompt string
	fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Generated body"}]},"finishReason":"MAX_TOKENS"}]}`))
	})

	out, err := run(t, "", "generate", "--type", "podcast", "Saint", "Yared")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated body")
	assert.Contains(t, out, "token limit")
	assert.Contains(t, gotPrompt, "Saint Yared")
}

func TestGenerateCommand_Errors(t *testing.T) {
	isolateEnv(t)

	_, err := run(t, "", "generate", "hello")
	assert.ErrorContains(t, err, "api_key")

	_, err = run(t, "   ", "generate")
	assert.ErrorContains(t, err, "no input")

	_, err = run(t, "", "generate", "--type", "poem", "x")
	assert.ErrorContains(t, err, "no preset")
}

func TestSpeakCommand(t *testing.T) {
	isolateEnv(t)
	pcm := make([]byte, 2*2400)
	fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"audio/L16;codec=pcm;rate=24000","data":"` +
			base64.StdEncoding.EncodeToString(pcm) + `"}}]},"finishReason":"STOP"}]}`))
	})
	path := filepath.Join(t.TempDir(), "out.wav")

	out, err := run(t, "In the beginning was the Word", "speak", "--voice", "Charon", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Charon, 24000 Hz, 16-bit, 1 ch, 100ms")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	hdr, samples, err := wav.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(24000), hdr.SampleRate)
	assert.Len(t, samples, 2400)
}

func TestInputText(t *testing.T) {
	got, err := inputText(strings.NewReader("ignored"), []string{" a", "b "})
	require.NoError(t, err)
	assert.Equal(t, "a b", got)

	got, err = inputText(strings.NewReader("  from stdin\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil))
	out := renderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3"}})
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "3")
}
