package services

import (
	"fmt"
	"strings"
	"time"

	"gallerybot/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// telegramAPI is the slice of the Telegram client the conversation needs.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api      telegramAPI
	client   *tgbotapi.BotAPI
	cfg      *Config
	store    *Store
	stats    *StatsAggregator
	sessions *Sessions
}

func NewBot(cfg *Config, store *Store, stats *StatsAggregator) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf("authorized as @%s", client.Self.UserName)

	return &Bot{
		api:      client,
		client:   client,
		cfg:      cfg,
		store:    store,
		stats:    stats,
		sessions: NewSessions(),
	}, nil
}

func (b *Bot) StartPolling() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.client.GetUpdatesChan(u)

	go func() {
		for upd := range updates {
			b.HandleUpdate(upd)
		}
	}()
}

func (b *Bot) SetupWebhook() error {
	wh, err := tgbotapi.NewWebhook(b.cfg.WebhookUrl + "/webhook")
	if err != nil {
		return err
	}

	_, err = b.client.Request(wh)

	return err
}

// HandleUpdate routes one inbound update through the upload conversation.
// Both the webhook handler and the polling loop end up here.
func (b *Bot) HandleUpdate(upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	switch {
	case len(msg.Photo) > 0 || msg.Video != nil:
		b.handleMedia(msg)
	case msg.Text != "":
		b.handleText(msg)
	}
}

func (b *Bot) handleMedia(msg *tgbotapi.Message) {
	if !b.cfg.IsAdmin(msg.From.UserName) {
		b.reply(msg.Chat.ID, "Sorry, only gallery admins can upload content.")
		return
	}

	fields := strings.Fields(msg.Caption)
	if len(fields) == 0 || fields[0] != "/upload" {
		b.reply(msg.Chat.ID, "To publish, send the media again with a caption like:\n/upload Your caption here")
		return
	}

	post, err := b.stagePost(msg, strings.Join(fields[1:], " "))
	if err != nil {
		log.Error().Err(err).Msg("resolving media file url failed")
		b.reply(msg.Chat.ID, "Something went wrong handling that file, please try again.")
		return
	}

	b.sessions.Stage(msg.Chat.ID, post)
	b.reply(msg.Chat.ID, "Got it! Now send a description for the post, or reply 'skip'.")
}

// stagePost builds the provisional record. Photos arrive as resolution
// variants ordered small to large; the last one is the full-size image.
func (b *Bot) stagePost(msg *tgbotapi.Message, caption string) (*types.Post, error) {
	now := time.Now()

	post := &types.Post{
		Id:        now.UnixMilli(),
		Caption:   caption,
		Author:    displayName(msg.From),
		CreatedAt: now.UTC().Format(time.RFC3339),
	}

	if len(msg.Photo) > 0 {
		variant := msg.Photo[len(msg.Photo)-1]

		url, err := b.api.GetFileDirectURL(variant.FileID)
		if err != nil {
			return nil, err
		}

		post.Type = types.PostImage
		post.Url = url
		post.Width = variant.Width
		post.Height = variant.Height
		post.FileSize = variant.FileSize
		post.FileId = variant.FileID
		if thumb, err := b.api.GetFileDirectURL(msg.Photo[0].FileID); err == nil {
			post.Thumb = thumb
		}
		if post.Caption == "" {
			post.Caption = "Untitled Post"
		}

		return post, nil
	}

	video := msg.Video

	url, err := b.api.GetFileDirectURL(video.FileID)
	if err != nil {
		return nil, err
	}

	post.Type = types.PostVideo
	post.Url = url
	post.Width = video.Width
	post.Height = video.Height
	post.Duration = video.Duration
	post.FileSize = video.FileSize
	post.FileId = video.FileID
	if video.Thumbnail != nil {
		if thumb, err := b.api.GetFileDirectURL(video.Thumbnail.FileID); err == nil {
			post.Thumb = thumb
		}
	}
	if post.Caption == "" {
		post.Caption = "Untitled Video"
	}

	return post, nil
}

func (b *Bot) handleText(msg *tgbotapi.Message) {
	state, pending := b.sessions.Get(msg.Chat.ID)

	if state == StateAwaitingDescription && b.cfg.IsAdmin(msg.From.UserName) {
		b.commit(msg, pending)
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		b.handleCommand(msg)
	}
	// Plain text while idle is ignored.
}

// commit finishes the dialogue: description in, record out. The confirmation
// is built from the record before the session is cleared.
func (b *Bot) commit(msg *tgbotapi.Message, pending *types.Post) {
	desc := strings.TrimSpace(msg.Text)
	if strings.EqualFold(desc, "skip") {
		desc = ""
	}
	pending.Description = desc

	if err := b.store.Add(*pending); err != nil {
		log.Error().Err(err).Msg("post commit failed")
		b.sessions.Clear(msg.Chat.ID)
		b.reply(msg.Chat.ID, "Publishing failed, please upload again.")
		return
	}

	b.stats.Recompute()

	confirmation := fmt.Sprintf(
		"Published!\nCaption: %s\nDescription: %s\nAuthor: %s\nId: %d\nLink: %s/?post=%d",
		pending.Caption, pending.Description, pending.Author, pending.Id, b.cfg.SiteUrl, pending.Id,
	)
	b.sessions.Clear(msg.Chat.ID)
	b.reply(msg.Chat.ID, confirmation)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch strings.Fields(msg.Text)[0] {
	case "/start", "/help":
		b.reply(msg.Chat.ID, "Send a photo or video with the caption '/upload Your caption' to publish it to the gallery.")
	case "/stats":
		if !b.cfg.IsAdmin(msg.From.UserName) {
			b.reply(msg.Chat.ID, "Sorry, only gallery admins can view stats.")
			return
		}
		snap := b.stats.Recompute()
		b.reply(msg.Chat.ID, fmt.Sprintf("Posts: %d\nTotal views: %d", snap.TotalPosts, snap.TotalViews))
	}
}

func (b *Bot) reply(chatId int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatId, text)); err != nil {
		log.Error().Err(err).Msg("sending reply failed")
	}
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}
