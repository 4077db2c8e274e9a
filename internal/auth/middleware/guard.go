package middleware

import (
	"net/http"

	"github.com/studentportal/webapp/internal/flash"
	"github.com/studentportal/webapp/internal/models"
)

// Denial describes why a guard rejected a request and where the user is sent instead
type Denial struct {
	Category flash.Category
	Message  string
	Location string
}

// Guard inspects a request and its session (nil when anonymous).
// It returns nil to let the request through.
type Guard func(r *http.Request, sess *models.Session) *Denial

// Require runs the guards in order. The first denial queues its notice
// and redirects with 303 See Other; later guards are not consulted.
func Require(guards ...Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := GetSession(r.Context())
			for _, guard := range guards {
				if denial := guard(r, sess); denial != nil {
					flash.Add(w, r, denial.Category, denial.Message)
					http.Redirect(w, r, denial.Location, http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRequired denies anonymous requests and sends them to the login page.
// It trusts the session snapshot; deactivating or deleting a user revokes their sessions instead.
func LoginRequired(r *http.Request, sess *models.Session) *Denial {
	if sess == nil {
		return &Denial{
			Category: flash.Warning,
			Message:  "Please log in to access this page.",
			Location: "/login",
		}
	}
	return nil
}

// AdminOnly denies sessions without the admin role.
// It must run after LoginRequired.
func AdminOnly(r *http.Request, sess *models.Session) *Denial {
	if !sess.IsAdmin() {
		return &Denial{
			Category: flash.Danger,
			Message:  "Admin access required.",
			Location: "/",
		}
	}
	return nil
}

// AdminRequired is the guard chain for admin pages
var AdminRequired = []Guard{LoginRequired, AdminOnly}
