package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type Event struct {
	Offset    int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

// EventRepo appends attempt lifecycle events (AttemptStarted,
// AttemptSubmitted, AttemptGraded) to the append-only sync log.
type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	site := e.SiteID
	if site == "" {
		site = r.siteID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		site, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Record marshals the payload and appends it; satisfies quiz.EventSink.
func (r *EventRepo) Record(ctx context.Context, typ, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Append(ctx, Event{Type: typ, Key: key, DataJSON: string(data)})
}
