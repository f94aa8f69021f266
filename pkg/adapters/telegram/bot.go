package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/ports"
)

// FailureText is shown when the wizard could not handle an action at all.
const FailureText = "⚠️ Something went wrong. Please try again."

// Sender is the subset of the Bot API used to answer. *bot.Bot implements it.
type Sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *tgbot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *tgbot.AnswerCallbackQueryParams) (bool, error)
}

// Adapter routes updates into a wizard handler and renders its replies.
// Updates of one user are handled in arrival order; different users run concurrently.
type Adapter struct {
	handler ports.Handler
	logger  *slog.Logger

	mu     sync.Mutex
	queues map[domain.UserID][]*models.Update
	wg     sync.WaitGroup
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New creates an adapter for h.
func New(h ports.Handler, opts ...Option) *Adapter {
	a := &Adapter{
		handler: h,
		logger:  logging.NewNop(),
		queues:  make(map[domain.UserID][]*models.Update),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Options returns the bot options Run applies after the caller's.
// The bot must hand updates over synchronously in polling order, so the
// adapter does the fan-out itself.
func (a *Adapter) Options() []tgbot.Option {
	return []tgbot.Option{
		tgbot.WithWorkers(1),
		tgbot.WithNotAsyncHandlers(),
		tgbot.WithDefaultHandler(a.botHandler),
	}
}

// Run long-polls the Bot API until ctx is cancelled, then waits for queued updates.
func (a *Adapter) Run(ctx context.Context, token string, opts ...tgbot.Option) error {
	b, err := tgbot.New(token, append(opts, a.Options()...)...)
	if err != nil {
		return err
	}
	a.logger.Info("bot started")
	b.Start(ctx)
	a.Wait()
	return nil
}

func (a *Adapter) botHandler(ctx context.Context, b *tgbot.Bot, u *models.Update) {
	a.Dispatch(ctx, b, u)
}

// Dispatch queues u behind the pending updates of the same user and returns.
func (a *Adapter) Dispatch(ctx context.Context, s Sender, u *models.Update) {
	env, ok := Envelope(u)
	if !ok {
		return
	}

	a.mu.Lock()
	pending, running := a.queues[env.UserID]
	a.queues[env.UserID] = append(pending, u)
	a.mu.Unlock()
	if running {
		return
	}

	a.wg.Add(1)
	go a.drain(ctx, s, env.UserID)
}

// Wait blocks until every dispatched update has been handled.
func (a *Adapter) Wait() {
	a.wg.Wait()
}

func (a *Adapter) drain(ctx context.Context, s Sender, userID domain.UserID) {
	defer a.wg.Done()
	for {
		a.mu.Lock()
		pending := a.queues[userID]
		if len(pending) == 0 {
			delete(a.queues, userID)
			a.mu.Unlock()
			return
		}
		u := pending[0]
		a.queues[userID] = pending[1:]
		a.mu.Unlock()

		a.HandleUpdate(ctx, s, u)
	}
}

// HandleUpdate processes one update and answers through s.
func (a *Adapter) HandleUpdate(ctx context.Context, s Sender, u *models.Update) {
	env, ok := Envelope(u)
	if !ok {
		return
	}

	reply, err := a.handler.Handle(ctx, env)
	if u.CallbackQuery != nil {
		a.answerCallback(ctx, s, u.CallbackQuery, reply, err)
		return
	}
	a.answerMessage(ctx, s, u.Message, reply, err)
}

func (a *Adapter) answerCallback(ctx context.Context, s Sender, q *models.CallbackQuery, reply domain.Reply, err error) {
	answer := &tgbot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}
	switch {
	case err != nil:
		answer.Text, answer.ShowAlert = FailureText, true
	case reply.Denied:
		answer.Text, answer.ShowAlert = reply.Prompt.Text, true
	case reply.Rejected:
		answer.Text, answer.ShowAlert = reply.Prompt.Error, true
	case reply.Ignored:
	default:
		a.edit(ctx, s, q.Message, reply.Prompt)
	}
	if _, err := s.AnswerCallbackQuery(ctx, answer); err != nil {
		a.logger.Warn("failed to answer callback", "err", err)
	}
}

func (a *Adapter) answerMessage(ctx context.Context, s Sender, m *models.Message, reply domain.Reply, err error) {
	switch {
	case err != nil:
		a.send(ctx, s, m.Chat.ID, domain.Prompt{Text: FailureText})
	case reply.Ignored:
	default:
		a.send(ctx, s, m.Chat.ID, reply.Prompt)
	}
}

// edit rewrites the message carrying the pressed button. A message too old
// to edit gets a fresh prompt instead.
func (a *Adapter) edit(ctx context.Context, s Sender, msg models.MaybeInaccessibleMessage, p domain.Prompt) {
	if msg.Message == nil {
		if msg.InaccessibleMessage != nil {
			a.send(ctx, s, msg.InaccessibleMessage.Chat.ID, p)
		}
		return
	}
	params := &tgbot.EditMessageTextParams{
		ChatID:      msg.Message.Chat.ID,
		MessageID:   msg.Message.ID,
		Text:        Text(p),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: Keyboard(p),
	}
	_, err := s.EditMessageText(ctx, params)
	if isUnparsable(err) {
		params.ParseMode = ""
		_, err = s.EditMessageText(ctx, params)
	}
	if err != nil && !isNotModified(err) {
		a.logger.Error("failed to edit message", "err", err, "chat_id", msg.Message.Chat.ID)
	}
}

func (a *Adapter) send(ctx context.Context, s Sender, chatID int64, p domain.Prompt) {
	params := &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      Text(p),
		ParseMode: models.ParseModeMarkdownV1,
	}
	if len(p.Actions) > 0 {
		params.ReplyMarkup = Keyboard(p)
	}
	_, err := s.SendMessage(ctx, params)
	if isUnparsable(err) {
		params.ParseMode = ""
		_, err = s.SendMessage(ctx, params)
	}
	if err != nil {
		a.logger.Error("failed to send message", "err", err, "chat_id", chatID)
	}
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// Free text echoed into a prompt can break Markdown; such messages are resent plain.
func isUnparsable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "can't parse entities")
}
