package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"os"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/response"
)

// timeTokenTTL is how long a generated X-Time-Token stays valid.
const timeTokenTTL = 5 * time.Minute

// apiKeyEnv names the environment variable holding the shared secret.
const apiKeyEnv = "INTERNAL_API_KEY"

// timeKey derives the fernet key used to sign time tokens from the API key.
func timeKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}

// GenerateTimeToken returns a fernet token signed with a key derived from apiKey.
// The token carries the issue time and is accepted by APIKeyMiddleware for five minutes.
func GenerateTimeToken(apiKey string) string {
	tok, err := fernet.EncryptAndSign([]byte(time.Now().UTC().Format(time.RFC3339)), timeKey(apiKey))
	if err != nil {
		log.Error().Err(err).Msg("failed to sign time token")
		return ""
	}
	return string(tok)
}

// APIKeyMiddleware guards state-changing endpoints. A request must carry the
// shared key in X-API-Key and a fresh token from GenerateTimeToken in X-Time-Token.
//
// The key is read from INTERNAL_API_KEY on every request so rotation does not
// need a restart. When it is unset every request is rejected with 500.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv(apiKeyEnv)
		if expected == "" {
			log.Error().Msg("INTERNAL_API_KEY is not set, rejecting protected request")
			response.RespondError(w, http.StatusInternalServerError, "server configuration error", "Authentication not loaded")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		token := r.Header.Get("X-Time-Token")
		if token == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if fernet.VerifyAndDecrypt([]byte(token), timeTokenTTL, []*fernet.Key{timeKey(expected)}) == nil {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}
