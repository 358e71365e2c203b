package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"experiment-bot/internal/experiments"
	"experiment-bot/internal/storage"
)

const (
	msgFetchFailed = "Failed to fetch build data."
	msgNotFound    = "No such experiment found."
	msgExpired     = "This browser has expired."
	msgBroken      = "Something went wrong."
	msgHelp        = "Usage: /experiments [name or id] [build:<hash>]\n" +
		"Without a name the whole experiment list of the build is shown page by page."
)

// parseArgs splits command arguments into the free-text query and an
// optional build hash given as build:<hash> or build=<hash>.
func parseArgs(args string) (query, hash string) {
	var words []string
	for _, w := range strings.Fields(args) {
		lw := strings.ToLower(w)
		switch {
		case strings.HasPrefix(lw, "build:"):
			hash = w[len("build:"):]
		case strings.HasPrefix(lw, "build="):
			hash = w[len("build="):]
		default:
			words = append(words, w)
		}
	}
	return strings.Join(words, " "), hash
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	switch msg.Command() {
	case "experiments", "experiment", "exper":
		b.handleExperiments(ctx, msg)
	case "start", "help":
		b.sendMessage(msg.Chat.ID, msgHelp)
	}
}

func (b *Bot) handleExperiments(ctx context.Context, msg *tgbotapi.Message) {
	query, hash := parseArgs(msg.CommandArguments())
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	ev := storage.Event{UserID: userID, ChatID: msg.Chat.ID, Query: query, BuildHash: hash}
	if query != "" {
		ev.Command = storage.CommandLookup
	} else {
		ev.Command = storage.CommandBrowse
	}
	logrus.Infof("/%s from %d: query=%q build=%q", msg.Command(), userID, query, hash)

	build, err := b.builds.FetchBuild(ctx, hash)
	if err != nil {
		logrus.Errorf("failed to fetch build %q: %v", hash, err)
		b.sendMessage(msg.Chat.ID, msgFetchFailed)
		ev.Outcome = storage.OutcomeError
		b.record(ev)
		return
	}
	ev.BuildHash = build.BuildHash

	if query != "" {
		ev.Outcome = b.replyLookup(msg, build, query)
	} else {
		ev.Outcome = b.startBrowser(msg, build)
	}
	b.record(ev)
}

func (b *Bot) replyLookup(msg *tgbotapi.Message, build *experiments.Build, query string) string {
	exp, err := experiments.Find(build.Experiments, query, b.matcher)
	if errors.Is(err, experiments.ErrNotFound) {
		b.sendMessage(msg.Chat.ID, msgNotFound)
		return storage.OutcomeNotFound
	}
	p, err := experiments.DetailPage(exp)
	if err != nil {
		logrus.Errorf("failed to render experiment %s: %v", exp.ID, err)
		b.sendMessage(msg.Chat.ID, msgBroken)
		return storage.OutcomeError
	}
	if err := b.renderInitial(msg.Chat.ID, msg.MessageID, p, nil); err != nil {
		logrus.Warnf("failed to send experiment %s: %v", exp.ID, err)
		return storage.OutcomeError
	}
	return storage.OutcomeFound
}

func (b *Bot) startBrowser(msg *tgbotapi.Message, build *experiments.Build) string {
	ctrl := experiments.NewBrowser(build.Experiments)
	upd, err := ctrl.Current()
	if err != nil {
		logrus.Errorf("failed to render experiment list: %v", err)
		b.sendMessage(msg.Chat.ID, msgBroken)
		return storage.OutcomeError
	}
	id := b.sessions.Put(ctrl)
	if err := b.renderInitial(msg.Chat.ID, msg.MessageID, upd.Page, controlsKeyboard(id, upd.Controls)); err != nil {
		logrus.Warnf("failed to send experiment list: %v", err)
		b.sessions.Delete(id)
		return storage.OutcomeError
	}
	return storage.OutcomeBrowse
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	ev, id, ok := parseCallback(cb.Data)
	if !ok || cb.Message == nil {
		b.answerCallback(cb.ID, "")
		return
	}
	chatID, messageID := cb.Message.Chat.ID, cb.Message.MessageID
	rec := storage.Event{ChatID: chatID, Command: storage.CommandNavigate}
	if cb.From != nil {
		rec.UserID = cb.From.ID
	}

	ctrl, ok := b.sessions.Get(id)
	if !ok {
		b.answerCallback(cb.ID, msgExpired)
		if err := b.renderUpdate(chatID, messageID, emptyPage, nil); err != nil {
			logrus.Warnf("failed to remove stale controls: %v", err)
		}
		rec.Outcome = storage.OutcomeExpired
		b.record(rec)
		return
	}

	upd, err := ctrl.Handle(ev)
	if err != nil {
		logrus.Errorf("failed to %s session %s: %v", ev, id, err)
		b.answerCallback(cb.ID, msgBroken)
		rec.Outcome = storage.OutcomeError
		b.record(rec)
		return
	}
	b.answerCallback(cb.ID, "")
	if err := b.renderUpdate(chatID, messageID, upd.Page, controlsKeyboard(id, upd.Controls)); err != nil {
		logrus.Warnf("failed to update experiment list: %v", err)
		rec.Outcome = storage.OutcomeError
		b.record(rec)
		return
	}
	rec.Outcome = storage.OutcomeNavigate
	b.record(rec)
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.s.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logrus.Warnf("failed to answer callback: %v", err)
	}
}
