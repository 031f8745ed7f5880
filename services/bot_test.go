package services

import (
	"path/filepath"
	"strings"
	"testing"

	"gallerybot/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeTelegram struct {
	sent []string
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (f *fakeTelegram) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func newTestBot(t *testing.T) (*Bot, *fakeTelegram) {
	t.Helper()

	dir := t.TempDir()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	fake := &fakeTelegram{}
	bot := &Bot{
		api:      fake,
		cfg:      &Config{Admins: []string{"Admin"}, SiteUrl: "https://gallery.example"},
		store:    store,
		stats:    NewStatsAggregator(dir, store),
		sessions: &Sessions{byChat: make(map[int64]*Session)},
	}

	return bot, fake
}

func photoUpdate(username, caption string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:    &tgbotapi.User{UserName: username, FirstName: "Ada"},
		Chat:    &tgbotapi.Chat{ID: 7},
		Caption: caption,
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90, Height: 60},
			{FileID: "big", Width: 1280, Height: 853, FileSize: 123456},
		},
	}}
}

func videoUpdate(username, caption string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:    &tgbotapi.User{UserName: username},
		Chat:    &tgbotapi.Chat{ID: 7},
		Caption: caption,
		Video: &tgbotapi.Video{
			FileID:    "vid",
			Width:     1920,
			Height:    1080,
			Duration:  14,
			FileSize:  998877,
			Thumbnail: &tgbotapi.PhotoSize{FileID: "vidthumb"},
		},
	}}
}

func textUpdate(username, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{UserName: username, FirstName: "Ada"},
		Chat: &tgbotapi.Chat{ID: 7},
		Text: text,
	}}
}

func TestUploadDeniedForNonAdmin(t *testing.T) {
	bot, fake := newTestBot(t)

	bot.HandleUpdate(photoUpdate("stranger", "/upload Sneaky"))

	if !strings.Contains(fake.last(), "only gallery admins") {
		t.Errorf("want denial reply, got %q", fake.last())
	}
	if state, _ := bot.sessions.Get(7); state != StateIdle {
		t.Error("denied upload must not change state")
	}
	if len(bot.store.Load()) != 0 {
		t.Error("denied upload committed a post")
	}
}

func TestAdminMatchIsCaseInsensitive(t *testing.T) {
	bot, _ := newTestBot(t)

	bot.HandleUpdate(photoUpdate("ADMIN", "/upload Hi"))

	if state, _ := bot.sessions.Get(7); state != StateAwaitingDescription {
		t.Error("case-insensitive admin match failed")
	}
}

func TestUploadRequiresCommandCaption(t *testing.T) {
	bot, fake := newTestBot(t)

	bot.HandleUpdate(photoUpdate("Admin", "just a nice pic"))

	if !strings.Contains(fake.last(), "/upload") {
		t.Errorf("want usage reply, got %q", fake.last())
	}
	if state, _ := bot.sessions.Get(7); state != StateIdle {
		t.Error("bad caption must leave the chat idle")
	}
}

func TestUploadSkipDescription(t *testing.T) {
	bot, fake := newTestBot(t)

	bot.HandleUpdate(photoUpdate("Admin", "/upload Sunset"))

	if state, _ := bot.sessions.Get(7); state != StateAwaitingDescription {
		t.Fatal("media accepted but not awaiting description")
	}
	if !strings.Contains(fake.last(), "description") {
		t.Errorf("want description prompt, got %q", fake.last())
	}

	bot.HandleUpdate(textUpdate("Admin", "SKIP"))

	posts := bot.store.Load()
	if len(posts) != 1 {
		t.Fatalf("want 1 committed post, got %d", len(posts))
	}

	post := posts[0]
	if post.Caption != "Sunset" {
		t.Errorf("want caption Sunset, got %q", post.Caption)
	}
	if post.Description != "" {
		t.Errorf("skip must clear the description, got %q", post.Description)
	}
	if post.Views != 0 {
		t.Errorf("fresh post must have 0 views, got %d", post.Views)
	}
	if post.Type != types.PostImage {
		t.Errorf("want image post, got %q", post.Type)
	}
	if post.Url != "https://files.example/big" {
		t.Errorf("highest-resolution variant not picked: %q", post.Url)
	}
	if post.Author != "Ada" {
		t.Errorf("want author Ada, got %q", post.Author)
	}

	if state, _ := bot.sessions.Get(7); state != StateIdle {
		t.Error("commit must return the chat to idle")
	}
	if !strings.Contains(fake.last(), "Sunset") {
		t.Errorf("confirmation must carry the caption, got %q", fake.last())
	}
}

func TestUploadDescriptionTrimmed(t *testing.T) {
	bot, _ := newTestBot(t)

	bot.HandleUpdate(photoUpdate("Admin", "/upload Pier"))
	bot.HandleUpdate(textUpdate("Admin", "  a lovely evening  "))

	if got := bot.store.Load()[0].Description; got != "a lovely evening" {
		t.Errorf("want trimmed description, got %q", got)
	}
}

func TestVideoUploadDefaults(t *testing.T) {
	bot, _ := newTestBot(t)

	bot.HandleUpdate(videoUpdate("Admin", "/upload"))
	bot.HandleUpdate(textUpdate("Admin", "skip"))

	post := bot.store.Load()[0]
	if post.Type != types.PostVideo {
		t.Errorf("want video post, got %q", post.Type)
	}
	if post.Caption != "Untitled Video" {
		t.Errorf("want default video caption, got %q", post.Caption)
	}
	if post.Duration != 14 {
		t.Errorf("duration lost, got %d", post.Duration)
	}
	if post.Thumb != "https://files.example/vidthumb" {
		t.Errorf("video thumbnail not resolved: %q", post.Thumb)
	}
}

func TestIdleTextNeverCommits(t *testing.T) {
	bot, fake := newTestBot(t)

	bot.HandleUpdate(textUpdate("Admin", "hello there"))

	if len(bot.store.Load()) != 0 {
		t.Error("idle text committed a post")
	}
	if len(fake.sent) != 0 {
		t.Errorf("idle plain text must be ignored, got reply %q", fake.last())
	}
}

func TestCommitFailureClearsSession(t *testing.T) {
	bot, fake := newTestBot(t)
	// A store pointing into a missing directory makes every write fail.
	bot.store = &Store{path: filepath.Join(t.TempDir(), "missing", "posts.json")}

	bot.HandleUpdate(photoUpdate("Admin", "/upload Doomed"))
	bot.HandleUpdate(textUpdate("Admin", "some description"))

	if !strings.Contains(fake.last(), "failed") {
		t.Errorf("want generic failure reply, got %q", fake.last())
	}
	if state, _ := bot.sessions.Get(7); state != StateIdle {
		t.Error("failed commit must still clear the session")
	}
}

func TestStartCommand(t *testing.T) {
	bot, fake := newTestBot(t)

	bot.HandleUpdate(textUpdate("anyone", "/start"))

	if !strings.Contains(fake.last(), "/upload") {
		t.Errorf("want usage help, got %q", fake.last())
	}
}

func TestStatsCommandAdminOnly(t *testing.T) {
	bot, fake := newTestBot(t)

	bot.HandleUpdate(textUpdate("stranger", "/stats"))
	if !strings.Contains(fake.last(), "only gallery admins") {
		t.Errorf("want denial, got %q", fake.last())
	}

	bot.HandleUpdate(textUpdate("Admin", "/stats"))
	if !strings.Contains(fake.last(), "Posts: 0") {
		t.Errorf("want stats summary, got %q", fake.last())
	}
}
