package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"experiment-bot/internal/page"
	"experiment-bot/internal/paging"
)

const (
	prevPrefix = "exp:prev:"
	nextPrefix = "exp:next:"
)

// emptyPage sets no fields; rendering it only touches the keyboard.
var emptyPage page.Page

// formatPage flattens the text fields of a page into one message body.
func (b *Bot) formatPage(p page.Page) string {
	var parts []string
	if c, ok := p.Content(); ok && c != "" {
		parts = append(parts, c)
	}
	es, _ := p.Embeds()
	for _, e := range es {
		var sb strings.Builder
		if e.Title != "" {
			sb.WriteString(b.bold(e.Title))
			sb.WriteString("\n")
		}
		sb.WriteString(e.Description)
		for _, f := range e.Fields {
			sb.WriteString("\n\n")
			sb.WriteString(b.bold(f.Name))
			sb.WriteString("\n")
			sb.WriteString(f.Value)
		}
		parts = append(parts, strings.TrimSpace(sb.String()))
	}
	return strings.Join(parts, "\n\n")
}

func (b *Bot) bold(s string) string {
	return "*" + tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) + "*"
}

// controlsKeyboard shows only the enabled controls; nil when none are.
func controlsKeyboard(id string, c paging.Controls) *tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if c.CanRetreat {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("◀ Previous", prevPrefix+id))
	}
	if c.CanAdvance {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Next ▶", nextPrefix+id))
	}
	if len(row) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return &kb
}

func parseCallback(data string) (paging.Event, string, bool) {
	switch {
	case strings.HasPrefix(data, prevPrefix):
		return paging.EventRetreat, strings.TrimPrefix(data, prevPrefix), true
	case strings.HasPrefix(data, nextPrefix):
		return paging.EventAdvance, strings.TrimPrefix(data, nextPrefix), true
	default:
		return 0, "", false
	}
}

// renderInitial sends p as a new reply.
func (b *Bot) renderInitial(chatID int64, replyTo int, p page.Page, kb *tgbotapi.InlineKeyboardMarkup) error {
	if p.HasText() {
		msg := tgbotapi.NewMessage(chatID, b.formatPage(p))
		msg.ParseMode = b.parseMode
		msg.ReplyToMessageID = replyTo
		if kb != nil {
			msg.ReplyMarkup = *kb
		}
		if _, err := b.s.Send(msg); err != nil {
			return err
		}
	}
	return b.sendAttachments(chatID, p)
}

// renderUpdate edits an existing message in place. Text is only touched
// when the page sets it; the keyboard always reflects kb.
func (b *Bot) renderUpdate(chatID int64, messageID int, p page.Page, kb *tgbotapi.InlineKeyboardMarkup) error {
	var c tgbotapi.Chattable
	if p.HasText() {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, b.formatPage(p))
		edit.ParseMode = b.parseMode
		edit.ReplyMarkup = kb
		c = edit
	} else {
		markup := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		if kb != nil {
			markup = *kb
		}
		c = tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup)
	}
	if _, err := b.s.Send(c); err != nil && !isNotModified(err) {
		return err
	}
	return b.sendAttachments(chatID, p)
}

func (b *Bot) sendAttachments(chatID int64, p page.Page) error {
	as, _ := p.Attachments()
	for _, a := range as {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: a.Name, Bytes: a.Data})
		if _, err := b.s.Send(doc); err != nil {
			logrus.Warnf("failed to send attachment %s: %v", a.Name, err)
			return err
		}
	}
	return nil
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
