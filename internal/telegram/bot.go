package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"experiment-bot/internal/experiments"
	"experiment-bot/internal/paging"
	"experiment-bot/internal/session"
	"experiment-bot/internal/storage"
)

// BuildFetcher loads a build snapshot; an empty hash means the latest build.
type BuildFetcher interface {
	FetchBuild(ctx context.Context, hash string) (*experiments.Build, error)
}

type browser = paging.Controller[experiments.Experiment]

// Options carries the collaborators of a Bot.
type Options struct {
	Builds    BuildFetcher
	Matcher   experiments.Matcher
	Sessions  *session.Store[*browser]
	Recorder  storage.Recorder
	// ParseMode must be tgbotapi.ModeMarkdown, the only mode pages are
	// escaped for. Empty means ModeMarkdown.
	ParseMode string
}

type Bot struct {
	api       *tgbotapi.BotAPI
	s         sender
	builds    BuildFetcher
	matcher   experiments.Matcher
	sessions  *session.Store[*browser]
	recorder  storage.Recorder
	parseMode string
	now       func() time.Time
}

// NewSessions creates the session store a Bot keeps its browsers in.
func NewSessions(ttl time.Duration) *session.Store[*browser] {
	return session.NewStore[*browser](ttl)
}

func New(botToken string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, opts)
	b.api = api
	return b, nil
}

func newBot(s sender, opts Options) *Bot {
	if opts.Matcher == nil {
		opts.Matcher = experiments.DefaultMatcher
	}
	if opts.Sessions == nil {
		opts.Sessions = NewSessions(session.DefaultTTL)
	}
	if opts.ParseMode == "" {
		opts.ParseMode = tgbotapi.ModeMarkdown
	}
	return &Bot{
		s:         s,
		builds:    opts.Builds,
		matcher:   opts.Matcher,
		sessions:  opts.Sessions,
		recorder:  opts.Recorder,
		parseMode: opts.ParseMode,
		now:       time.Now,
	}
}

// Start polls for updates until ctx is cancelled. Updates are handled one
// at a time, so a browsing session never sees concurrent navigation.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logrus.Infof("authorized on account @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
		return
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

// SendText sends a plain message, e.g. the daily report.
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.s.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		logrus.Warnf("failed to send message: %v", err)
	}
}

func (b *Bot) record(ev storage.Event) {
	if b.recorder == nil {
		return
	}
	ev.Timestamp = b.now().UTC()
	if err := b.recorder.Append(ev); err != nil {
		logrus.Warnf("failed to record usage: %v", err)
	}
}
