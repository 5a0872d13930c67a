package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coinlink/exchange/internal/repos/bots"
)

type ctxKey int

const botKey ctxKey = iota

// RequireBot resolves the bearer token to a registered bot and stores it
// on the request context. Requests without a resolving token never reach
// the handlers, so authentication always precedes every other guard.
func RequireBot(repo bots.Bots) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			bot, err := repo.FindByToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, bots.ErrBotNotFound) {
					writeError(w, http.StatusUnauthorized, "invalid token")
					return
				}

				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			// A disabled bot's token stops working entirely,
			// indistinguishable from one that never existed.
			if bot.Disabled {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), botKey, bot)))
		})
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// botFrom returns the authenticated bot, or nil outside RequireBot.
func botFrom(ctx context.Context) *bots.Bot {
	bot, _ := ctx.Value(botKey).(*bots.Bot)
	return bot
}
