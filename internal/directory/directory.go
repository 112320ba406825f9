// Package directory implements the user/course lookup collaborators the quiz
// engine consumes. User data comes from the local users table; course titles
// come from whatever catalog the deployment wires in.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matteusmoreira/eadinpeace-sub001/internal/quiz"
)

type SQLUserDirectory struct {
	db *sql.DB
}

func NewSQLUserDirectory(db *sql.DB) *SQLUserDirectory { return &SQLUserDirectory{db: db} }

func (d *SQLUserDirectory) ResolveUser(ctx context.Context, id string) (quiz.User, error) {
	var u quiz.User
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, email FROM users WHERE id=$1 OR username=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.User{}, fmt.Errorf("user %s: %w", id, quiz.ErrNotFound)
	}
	return u, err
}

// StaticCatalog resolves course/lesson titles from a fixed map; deployments
// with a real course service replace it.
type StaticCatalog struct {
	Courses map[string]string
	Lessons map[string]string
}

func (c StaticCatalog) ResolveCourse(_ context.Context, id string) (string, error) {
	if t, ok := c.Courses[id]; ok {
		return t, nil
	}
	return "", fmt.Errorf("course %s: %w", id, quiz.ErrNotFound)
}

func (c StaticCatalog) ResolveLesson(_ context.Context, id string) (string, error) {
	if t, ok := c.Lessons[id]; ok {
		return t, nil
	}
	return "", fmt.Errorf("lesson %s: %w", id, quiz.ErrNotFound)
}
