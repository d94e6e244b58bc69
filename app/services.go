// Package app holds the demo services wired by container.yaml.
package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-minidi/framework/container"
)

// Register adds the demo classes and closures to reg.
//
//	app.Register(container.DefaultRegistry)
func Register(reg *container.Registry) {
	reg.Class("app.Database", container.Struct[Database]()).
		Class("app.Mailer", container.Struct[Mailer]()).
		Class("app.UserRepository", container.Struct[UserRepository]()).
		Closure("app.clock", func(container.Config, container.Dependencies, *container.Container) (any, error) {
			return &Clock{Started: time.Now()}, nil
		})
}

// ── Database ──────────────────────────────────────────────────────────────────

// Database is an in-memory table store addressed by DSN.
type Database struct {
	MaxConns int `config:"max_conns"`

	dsn    string
	tables map[string][]map[string]any
}

// Setters accepts the "dsn" slot.
func (d *Database) Setters() map[string]func(any) error {
	return map[string]func(any) error{
		"dsn": func(v any) error {
			dsn, ok := v.(string)
			if !ok || strings.TrimSpace(dsn) == "" {
				return errors.New("dsn must be a non-empty string")
			}
			d.dsn = dsn
			return nil
		},
	}
}

// DSN returns the connection string.
func (d *Database) DSN() string { return d.dsn }

// Insert appends row to table and returns its 1-based id.
func (d *Database) Insert(table string, row map[string]any) int {
	if d.tables == nil {
		d.tables = make(map[string][]map[string]any)
	}
	d.tables[table] = append(d.tables[table], row)
	return len(d.tables[table])
}

// Count returns the number of rows in table.
func (d *Database) Count(table string) int { return len(d.tables[table]) }

func (d *Database) String() string {
	return fmt.Sprintf("Database(%s, max_conns=%d)", d.dsn, d.MaxConns)
}

// ── Mailer ────────────────────────────────────────────────────────────────────

// Mailer records outgoing messages and logs them.
type Mailer struct {
	From   string
	Logger *zap.Logger `inject:"logger"`

	Sent []string
}

// Init validates the sender; it runs once the logger is injected.
func (m *Mailer) Init() error {
	if m.From == "" {
		return errors.New("mailer: from address is required")
	}
	m.Logger.Debug("Mailer ready", zap.String("from", m.From))
	return nil
}

// Send records a message to to.
func (m *Mailer) Send(to, subject string) {
	m.Sent = append(m.Sent, to+": "+subject)
	m.Logger.Info("Mail sent",
		zap.String("from", m.From),
		zap.String("to", to),
		zap.String("subject", subject),
	)
}

// ── UserRepository ────────────────────────────────────────────────────────────

// User is a stored user row.
type User struct {
	ID    int
	Name  string
	Email string
}

// UserRepository stores users in Table and notifies them on creation.
type UserRepository struct {
	Table    string
	DB       *Database
	Notifier *Mailer
}

// Create stores a user and sends a welcome mail.
func (r *UserRepository) Create(name, email string) (*User, error) {
	if name == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid user %q <%s>", name, email)
	}
	id := r.DB.Insert(r.Table, map[string]any{"name": name, "email": email})
	r.Notifier.Send(email, "Welcome, "+name)
	return &User{ID: id, Name: name, Email: email}, nil
}

// ── Clock ─────────────────────────────────────────────────────────────────────

// Clock reports the time the container first built it.
type Clock struct {
	Started time.Time
}
