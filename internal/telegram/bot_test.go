package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"experiment-bot/internal/buildsource"
	"experiment-bot/internal/experiments"
	"experiment-bot/internal/storage"
)

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last() tgbotapi.Chattable { return f.sent[len(f.sent)-1] }

func (f *fakeSender) lastAnswer() string {
	return f.requests[len(f.requests)-1].(tgbotapi.CallbackConfig).Text
}

type fakeBuilds struct {
	build *experiments.Build
	err   error
	hash  string
}

func (f *fakeBuilds) FetchBuild(_ context.Context, hash string) (*experiments.Build, error) {
	f.hash = hash
	return f.build, f.err
}

type memRecorder struct{ events []storage.Event }

func (m *memRecorder) Append(ev storage.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *memRecorder) Load() ([]storage.Event, error) { return m.events, nil }

func buildWith(n int) *experiments.Build {
	exps := make([]experiments.Experiment, n)
	for i := range exps {
		exps[i] = experiments.Experiment{
			Kind:  experiments.KindUser,
			ID:    fmt.Sprintf("2024-%02d_exp_%d", i%12+1, i),
			Label: fmt.Sprintf("Experiment %d", i),
		}
	}
	return &experiments.Build{BuildHash: "abc", Experiments: exps}
}

func newTestBot(builds BuildFetcher) (*Bot, *fakeSender, *memRecorder) {
	fs := &fakeSender{}
	rec := &memRecorder{}
	b := newBot(fs, Options{Builds: builds, Recorder: rec, ParseMode: tgbotapi.ModeMarkdown})
	return b, fs, rec
}

func command(text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 100},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: 100}},
		Data:    data,
	}
}

func keyboardData(t *testing.T, markup interface{}) []string {
	t.Helper()
	var kb tgbotapi.InlineKeyboardMarkup
	switch m := markup.(type) {
	case tgbotapi.InlineKeyboardMarkup:
		kb = m
	case *tgbotapi.InlineKeyboardMarkup:
		if m == nil {
			return nil
		}
		kb = *m
	case nil:
		return nil
	default:
		t.Fatalf("unexpected markup type %T", markup)
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			out = append(out, *btn.CallbackData)
		}
	}
	return out
}

func TestBrowse_NavigateForwardAndBack(t *testing.T) {
	b, fs, rec := newTestBot(&fakeBuilds{build: buildWith(45)})

	b.handleMessage(context.Background(), command("/experiments"))

	first, ok := fs.last().(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected a new message, got %T", fs.last())
	}
	if !strings.Contains(first.Text, "*Page 1/3*") {
		t.Fatalf("missing page header: %q", first.Text)
	}
	if first.ReplyToMessageID != 10 {
		t.Fatalf("browser should reply to the command")
	}
	data := keyboardData(t, first.ReplyMarkup)
	if len(data) != 1 || !strings.HasPrefix(data[0], nextPrefix) {
		t.Fatalf("first page should only offer next: %v", data)
	}
	next := data[0]
	id := strings.TrimPrefix(next, nextPrefix)

	b.handleCallback(callback(next))
	edit, ok := fs.last().(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("expected an edit, got %T", fs.last())
	}
	if edit.MessageID != 55 || !strings.Contains(edit.Text, "*Page 2/3*") {
		t.Fatalf("unexpected edit: %+v", edit)
	}
	if got := keyboardData(t, edit.ReplyMarkup); len(got) != 2 || got[0] != prevPrefix+id || got[1] != nextPrefix+id {
		t.Fatalf("middle page should offer both controls: %v", got)
	}

	b.handleCallback(callback(next))
	edit = fs.last().(tgbotapi.EditMessageTextConfig)
	if !strings.Contains(edit.Text, "*Page 3/3*") {
		t.Fatalf("expected last page: %q", edit.Text)
	}
	if got := keyboardData(t, edit.ReplyMarkup); len(got) != 1 || got[0] != prevPrefix+id {
		t.Fatalf("last page should only offer previous: %v", got)
	}

	b.handleCallback(callback(prevPrefix + id))
	edit = fs.last().(tgbotapi.EditMessageTextConfig)
	if !strings.Contains(edit.Text, "*Page 2/3*") {
		t.Fatalf("expected page 2 after retreat: %q", edit.Text)
	}

	if len(fs.requests) != 3 || fs.lastAnswer() != "" {
		t.Fatalf("every callback must be answered: %d", len(fs.requests))
	}
	if len(rec.events) != 4 || rec.events[0].Outcome != storage.OutcomeBrowse || rec.events[3].Outcome != storage.OutcomeNavigate {
		t.Fatalf("unexpected usage log: %+v", rec.events)
	}
}

func TestBrowse_SingleItemHasNoControls(t *testing.T) {
	b, fs, _ := newTestBot(&fakeBuilds{build: buildWith(1)})
	b.handleMessage(context.Background(), command("/exper"))
	msg := fs.last().(tgbotapi.MessageConfig)
	if msg.ReplyMarkup != nil {
		t.Fatalf("single page must not show controls: %+v", msg.ReplyMarkup)
	}
	if strings.Count(msg.Text, "- (User)") != 1 || !strings.Contains(msg.Text, "Page 1/1") {
		t.Fatalf("unexpected single page: %q", msg.Text)
	}
}

func TestCallback_ExpiredSession(t *testing.T) {
	b, fs, rec := newTestBot(&fakeBuilds{build: buildWith(45)})
	b.handleCallback(callback(nextPrefix + "gone"))

	if fs.lastAnswer() != msgExpired {
		t.Fatalf("unexpected answer %q", fs.lastAnswer())
	}
	if _, ok := fs.last().(tgbotapi.EditMessageReplyMarkupConfig); !ok {
		t.Fatalf("stale controls should be removed, got %T", fs.last())
	}
	if rec.events[0].Outcome != storage.OutcomeExpired {
		t.Fatalf("unexpected outcome %+v", rec.events)
	}
}

func TestCallback_UnknownDataIsAnswered(t *testing.T) {
	b, fs, _ := newTestBot(&fakeBuilds{})
	b.handleCallback(callback("something-else"))
	if len(fs.requests) != 1 || len(fs.sent) != 0 {
		t.Fatalf("want one answer and no messages: %d %d", len(fs.requests), len(fs.sent))
	}
}

func TestLookup_Found(t *testing.T) {
	build := &experiments.Build{BuildHash: "h1", Experiments: []experiments.Experiment{
		{Kind: experiments.KindGuild, ID: "2023-01_other", Label: "Other"},
		{Kind: experiments.KindGuild, ID: "2024-02_foo", Label: "Foo Bar", Treatments: []experiments.Treatment{{ID: 1, Label: "Enabled"}}},
	}}
	fb := &fakeBuilds{build: build}
	b, fs, rec := newTestBot(fb)
	b.matcher = experiments.MatcherFunc(func(a, q string) int {
		if a == q {
			return 100
		}
		return 0
	})

	b.handleMessage(context.Background(), command("/experiments Foo Bar build:h1"))

	if fb.hash != "h1" {
		t.Fatalf("build hash not forwarded: %q", fb.hash)
	}
	msg := fs.last().(tgbotapi.MessageConfig)
	for _, want := range []string{"*Foo Bar*", "ID: `2024-02_foo`", "Kind: Guild", "*Treatments*", "- Treatment 1: Enabled"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("detail missing %q: %q", want, msg.Text)
		}
	}
	if msg.ReplyMarkup != nil {
		t.Fatalf("detail reply must not carry controls")
	}
	if rec.events[0].Command != storage.CommandLookup || rec.events[0].Outcome != storage.OutcomeFound {
		t.Fatalf("unexpected usage log: %+v", rec.events)
	}
}

func TestLookup_NotFound(t *testing.T) {
	b, fs, rec := newTestBot(&fakeBuilds{build: buildWith(3)})
	b.matcher = experiments.MatcherFunc(func(string, string) int { return 0 })
	b.handleMessage(context.Background(), command("/experiment nothing like it"))
	msg := fs.last().(tgbotapi.MessageConfig)
	if msg.Text != msgNotFound || msg.ReplyMarkup != nil {
		t.Fatalf("unexpected reply: %+v", msg)
	}
	if rec.events[0].Outcome != storage.OutcomeNotFound || rec.events[0].Query != "nothing like it" {
		t.Fatalf("unexpected usage log: %+v", rec.events)
	}
}

func TestFetchFailure(t *testing.T) {
	err := &buildsource.RetrievalError{URL: "x", StatusCode: 500, Err: errors.New("boom")}
	b, fs, rec := newTestBot(&fakeBuilds{err: err})
	b.handleMessage(context.Background(), command("/experiments"))
	msg := fs.last().(tgbotapi.MessageConfig)
	if msg.Text != msgFetchFailed {
		t.Fatalf("unexpected reply %q", msg.Text)
	}
	if b.sessions.Len() != 0 {
		t.Fatalf("no session should be created on failure")
	}
	if rec.events[0].Outcome != storage.OutcomeError {
		t.Fatalf("unexpected usage log: %+v", rec.events)
	}
}

func TestNonCommandIgnored(t *testing.T) {
	b, fs, _ := newTestBot(&fakeBuilds{build: buildWith(1)})
	b.handleMessage(context.Background(), &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 1}})
	if len(fs.sent) != 0 {
		t.Fatalf("plain messages must be ignored")
	}
}

func TestParseArgs(t *testing.T) {
	cases := []struct {
		in, query, hash string
	}{
		{"", "", ""},
		{"foo bar", "foo bar", ""},
		{"foo build:abc bar", "foo bar", "abc"},
		{"BUILD=xyz", "", "xyz"},
		{"  spaced   out  ", "spaced out", ""},
	}
	for _, c := range cases {
		q, h := parseArgs(c.in)
		if q != c.query || h != c.hash {
			t.Fatalf("parseArgs(%q) = %q, %q; want %q, %q", c.in, q, h, c.query, c.hash)
		}
	}
}
