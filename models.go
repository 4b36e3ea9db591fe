package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"-"`
	PublicID       uuid.UUID  `bun:"public_id,notnull,unique,type:uuid" json:"public_id"`
	Email          string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	Admin          bool       `bun:"admin,notnull,default:false" json:"admin"`
	LoginAttempts  int        `bun:"login_attempts,notnull,default:0" json:"-"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at,nullzero" json:"-"`
	LoggedInAt     *time.Time `bun:"loggedin_at,nullzero" json:"-"`
	RegisteredOn   time.Time  `bun:"registered_on,notnull,nullzero,default:current_timestamp" json:"registered_on"`
}

// Widget is the widget model
type Widget struct {
	bun.BaseModel `bun:"table:widgets,alias:wdg"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"-"`
	Name          string    `bun:"name,notnull,unique" json:"name"`
	InfoURL       string    `bun:"info_url" json:"info_url"`
	CreatedAt     time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp" json:"created_at"`
	Deadline      time.Time `bun:"deadline,notnull" json:"deadline"`
	OwnerID       uuid.UUID `bun:"owner_id,notnull,type:uuid" json:"-"`
	Owner         *User     `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
}

// DeadlinePassed reports whether the deadline day is over at now.
// Deadlines are whole days, so a widget due today has not passed.
func (w *Widget) DeadlinePassed(now time.Time) bool {
	return dayOf(now).After(dayOf(w.Deadline))
}

// TimeRemaining returns the time left until the end of the deadline day
func (w *Widget) TimeRemaining(now time.Time) time.Duration {
	end := dayOf(w.Deadline).AddDate(0, 0, 1)
	left := end.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
