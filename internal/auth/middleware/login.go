package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// LoginHandler checks credentials against the users table; in dev/offline the
// bootstrap admin from config works even before any user row exists.
// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService, db *sql.DB, adminUser, adminPassHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		sub, role, ok := "", "", false
		if db != nil {
			var id, hash, dbRole string
			err := db.QueryRowContext(r.Context(),
				`SELECT id, password_hash, role FROM users WHERE username=$1`,
				req.Username).Scan(&id, &hash, &dbRole)
			switch {
			case err == nil:
				if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) == nil {
					sub, role, ok = id, dbRole, true
				}
			case errors.Is(err, sql.ErrNoRows) || isUsersTableMissing(err):
				// fall through to bootstrap admin
			default:
				http.Error(w, "login failed", http.StatusInternalServerError)
				return
			}
		}
		if !ok && req.Username == adminUser &&
			bcrypt.CompareHashAndPassword([]byte(adminPassHash), []byte(req.Password)) == nil {
			sub, role, ok = adminUser, "admin", true
		}
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		tok, err := a.IssueJWT(sub, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}

func isUsersTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table: users") || // sqlite
		strings.Contains(msg, `relation "users" does not exist`) // postgres
}
