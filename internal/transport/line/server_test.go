package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideapartner/ideapartner/internal/config"
	"github.com/ideapartner/ideapartner/internal/core"
)

const testSecret = "channel-secret"

type sentReply struct {
	token string
	text  string
}

type fakeMessenger struct {
	mu      sync.Mutex
	replies []sentReply
}

func (f *fakeMessenger) Reply(_ context.Context, replyToken, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, sentReply{token: replyToken, text: text})
	return nil
}

func (f *fakeMessenger) Content(context.Context, string) (core.Image, error) {
	return core.Image{Data: []byte("img"), MIMEType: "image/png"}, nil
}

// echoDispatcher records events and replies with the event text.
type echoDispatcher struct {
	mu     sync.Mutex
	events []core.Event
}

func (d *echoDispatcher) Dispatch(ctx context.Context, ev core.Event, ch core.Channel) error {
	d.mu.Lock()
	d.events = append(d.events, ev)
	d.mu.Unlock()
	return ch.Reply(ctx, "echo: "+ev.Text)
}

func newTestServer(t *testing.T, plain bool) (*Server, *fakeMessenger, *echoDispatcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	messenger := &fakeMessenger{}
	dispatcher := &echoDispatcher{}
	s, err := NewServer(
		&config.ServerConfig{PublicBaseURL: "https://bot.example.com", Addr: ":0", StaticDir: filepath.Join(t.TempDir(), "static")},
		&config.LineConfig{ChannelSecret: testSecret, AccessToken: "token"},
		&config.AppConfig{ReplyPlainText: plain},
		messenger,
		dispatcher,
	)
	require.NoError(t, err)
	return s, messenger, dispatcher
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func post(s *Server, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Line-Signature", signature)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func messageEvent(replyToken, message string) string {
	return `{"type":"message","mode":"active","timestamp":1700000000000,` +
		`"source":{"type":"user","userId":"U1"},"webhookEventId":"01HX","deliveryContext":{"isRedelivery":false},` +
		`"replyToken":"` + replyToken + `","message":` + message + `}`
}

func callbackBody(events ...string) string {
	return `{"destination":"Ubot","events":[` + strings.Join(events, ",") + `]}`
}

func TestCallback_TextEvent(t *testing.T) {
	s, messenger, dispatcher := newTestServer(t, false)
	body := callbackBody(messageEvent("rt-1", `{"type":"text","id":"m1","quoteToken":"q1","text":"open a cafe"}`))

	w := post(s, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, core.Event{Kind: core.EventText, UserID: "U1", Text: "open a cafe", MessageID: "m1"}, dispatcher.events[0])
	assert.Equal(t, []sentReply{{token: "rt-1", text: "echo: open a cafe"}}, messenger.replies)
}

func TestCallback_ImageEvent(t *testing.T) {
	s, _, dispatcher := newTestServer(t, false)
	body := callbackBody(messageEvent("rt-2", `{"type":"image","id":"img-9","quoteToken":"q2","contentProvider":{"type":"line"}}`))

	w := post(s, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, core.EventImage, dispatcher.events[0].Kind)
	assert.Equal(t, "img-9", dispatcher.events[0].MessageID)
}

func TestCallback_IgnoresOtherEvents(t *testing.T) {
	s, messenger, dispatcher := newTestServer(t, false)
	body := callbackBody(
		messageEvent("rt-3", `{"type":"sticker","id":"s1","quoteToken":"q3","packageId":"1","stickerId":"1","stickerResourceType":"STATIC"}`),
		`{"type":"follow","mode":"active","timestamp":1700000000000,"source":{"type":"user","userId":"U1"},"webhookEventId":"01HY","deliveryContext":{"isRedelivery":false},"replyToken":"rt-4","follow":{"isUnblocked":false}}`,
	)

	w := post(s, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dispatcher.events)
	assert.Empty(t, messenger.replies)
}

func TestCallback_RejectsBadSignature(t *testing.T) {
	s, messenger, dispatcher := newTestServer(t, false)
	body := callbackBody(messageEvent("rt-5", `{"type":"text","id":"m1","quoteToken":"q","text":"hi"}`))

	tests := []struct {
		name      string
		signature string
	}{
		{"missing", ""},
		{"wrong secret", base64.StdEncoding.EncodeToString([]byte("forged"))},
		{"signature of other body", sign(body + " ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(s, body, tt.signature)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, dispatcher.events)
	assert.Empty(t, messenger.replies)
}

func TestCallback_RejectsMalformedBody(t *testing.T) {
	s, _, dispatcher := newTestServer(t, false)
	body := `{"events":[`

	w := post(s, body, sign(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, dispatcher.events)
}

func TestCallback_PlainTextReplies(t *testing.T) {
	s, messenger, _ := newTestServer(t, true)
	body := callbackBody(messageEvent("rt-6", `{"type":"text","id":"m1","quoteToken":"q","text":"**bold** idea"}`))

	w := post(s, body, sign(body))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, messenger.replies, 1)
	assert.Equal(t, "echo: bold idea", messenger.replies[0].text)
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t, false)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"status": "Active",
		"mode":   "Speed King (1.5s Timeout) + Vision Ready",
	}, body)
}

func TestChannel_TruncatesLongReplies(t *testing.T) {
	messenger := &fakeMessenger{}
	ch := &channel{messenger: messenger, replyToken: "rt"}

	require.NoError(t, ch.Reply(context.Background(), strings.Repeat("ก", maxTextLen+10)))
	assert.Equal(t, maxTextLen, len([]rune(messenger.replies[0].text)))
}
