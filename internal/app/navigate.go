package app

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/Spok95/lms-bot/internal/apiclient"
	"github.com/Spok95/lms-bot/internal/bot/handlers"
	"github.com/Spok95/lms-bot/internal/bot/menu"
	"github.com/Spok95/lms-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/lms-bot/internal/guard"
	"github.com/Spok95/lms-bot/internal/logging"
	"github.com/Spok95/lms-bot/internal/metrics"
	"github.com/Spok95/lms-bot/internal/observability"
	"github.com/Spok95/lms-bot/internal/session"
)

const fallbackError = "Не удалось выполнить запрос. Попробуйте позже."

// navigate пропускает путь через guard и рисует экран.
func (a *App) navigate(ctx context.Context, chatID int64, target string) {
	sess := a.sessions.Get(chatID)
	for i := 0; i < maxRedirects; i++ {
		path, query := handlers.SplitTarget(target)
		d := a.guard.Resolve(sess.Ensure(ctx), sess.Capabilities(), path)
		switch {
		case d.Loading:
			a.send(chatID, "⏳ Загрузка…")
			return
		case d.Redirect != "":
			target = d.Redirect
			continue
		case d.NotFound:
			a.send(chatID, "🤷 Страница не найдена.")
			return
		case d.Forbidden:
			a.send(chatID, "⛔ Недостаточно прав.")
			return
		}
		a.render(ctx, chatID, sess, d, query, target)
		return
	}
	logging.FromContext(ctx, a.log).Error("redirect loop", zap.String("target", target))
}

func (a *App) render(ctx context.Context, chatID int64, sess *session.Session, d guard.Decision, query url.Values, target string) {
	screen, ok := handlers.Screens[d.Screen]
	if !ok {
		a.send(chatID, "🤷 Страница не найдена.")
		return
	}

	vctx, vgen, done := a.views.Begin(ctx, chatID)
	defer done()
	sgen := sess.Generation()

	page, err := screen(vctx, a.view(sess, d.Path, d.Params, query))

	if a.Observe(ctx, chatID, sess, sgen, err) {
		return
	}
	if !a.views.Current(chatID, vgen) || !sess.Current(sgen) {
		metrics.StaleViews.Inc()
		return
	}
	if err != nil {
		a.fail(ctx, chatID, sess, sgen, err, target)
		return
	}
	if page.Dialog != nil {
		a.dialogs.Set(chatID, page.Dialog)
	}
	a.sendReply(chatID, sess, fsmutil.Reply{Text: page.Text, Markup: page.Markup})
}

func (a *App) view(sess *session.Session, path string, params map[string]string, query url.Values) handlers.View {
	if query == nil {
		query = url.Values{}
	}
	return handlers.View{Sess: sess, Path: path, Params: params, Query: query, Loc: a.loc, Now: a.now()}
}

// act выполняет "act:<verb>:<id>…" под замком чата.
func (a *App) act(ctx context.Context, chatID int64, sess *session.Session, data string) {
	verb, args, err := handlers.ParseAction(data)
	var action handlers.Action
	if err == nil {
		action, err = handlers.Lookup(verb, args)
	}
	if err != nil {
		logging.FromContext(ctx, a.log).Debug("bad action", zap.String("data", data), zap.Error(err))
		a.send(chatID, "⚠️ Неизвестное действие.")
		return
	}
	if sess.Ensure(ctx) != session.Authenticated {
		a.navigate(ctx, chatID, guard.LoginPath)
		return
	}
	if !action.Needs.Allows(sess.Capabilities()) {
		a.send(chatID, "⛔ Недостаточно прав.")
		return
	}

	key := "act:" + verb
	if !fsmutil.SetPending(chatID, key) {
		a.send(chatID, "⏳ Предыдущее действие ещё выполняется…")
		return
	}
	defer fsmutil.ClearPending(chatID, key)

	sgen := sess.Generation()
	unlock := a.limiter.lock(chatID)
	res, err := action.Run(ctx, a.view(sess, "", nil, nil), args)
	unlock()

	if err != nil {
		a.fail(ctx, chatID, sess, sgen, err, "")
		return
	}
	if !sess.Current(sgen) {
		metrics.StaleViews.Inc()
		return
	}
	if res.Notice != "" {
		a.send(chatID, res.Notice)
	}
	if res.Document != nil {
		a.sendDocument(ctx, chatID, res.Document)
	}
	switch {
	case res.Dialog != nil:
		a.dialogs.Set(chatID, res.Dialog)
		a.sendReply(chatID, sess, res.Prompt)
	case res.Next != "":
		a.navigate(ctx, chatID, res.Next)
	}
}

// Observe — единственная реакция на 401 от любого запроса: гасит сессию,
// сбрасывает диалог и экран чата и ведёт на вход. gen — поколение сессии на
// момент запроса; 401 от уже сменившейся сессии только отбрасывается.
// Возвращает true, если ошибка была 401.
func (a *App) Observe(ctx context.Context, chatID int64, sess *session.Session, gen uint64, err error) bool {
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return false
	}
	if !sess.ObserveFrom(ctx, gen, err) {
		metrics.StaleViews.Inc()
		return true
	}
	a.dialogs.Clear(chatID)
	a.views.Cancel(chatID)
	a.sendKeyboard(chatID, "🔒 Сессия истекла. Войдите снова.", menu.Guest())
	a.navigate(ctx, chatID, guard.LoginPath)
	return true
}

// fail — короткое уведомление об ошибке; чат остаётся на прежнем экране.
// retry — путь для кнопки "Повторить".
func (a *App) fail(ctx context.Context, chatID int64, sess *session.Session, gen uint64, err error, retry string) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if a.Observe(ctx, chatID, sess, gen, err) {
		return
	}
	metrics.HandlerErrors.Inc()
	observability.CaptureSystemErr(err)
	logging.FromContext(ctx, a.log).Warn("request failed", zap.Error(err))

	text := "❌ " + apiclient.Message(err, fallbackError)
	if errors.Is(err, session.ErrSuperseded) || errors.Is(err, handlers.ErrBadAction) {
		text = "⚠️ " + fallbackError
	}
	a.sendRetry(chatID, text, retry)
}
