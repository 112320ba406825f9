package quiz

import "context"

// External collaborators. The engine consumes these as opaque services; the
// real implementations (directory lookups, notification delivery) live
// outside this package.

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserDirectory interface {
	ResolveUser(ctx context.Context, id string) (User, error)
}

type CourseCatalog interface {
	ResolveCourse(ctx context.Context, id string) (title string, err error)
	ResolveLesson(ctx context.Context, id string) (title string, err error)
}

type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// EventSink receives attempt lifecycle events for the append-only sync log.
type EventSink interface {
	Record(ctx context.Context, typ, key string, payload interface{}) error
}
