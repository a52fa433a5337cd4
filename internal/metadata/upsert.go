package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/metdbload/internal/keys"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// InstanceInfoRecord is one instance_info audit row.
type InstanceInfoRecord struct {
	ID         int64
	Updater    string
	UpdateDate time.Time
	LoadNote   string
	XML        string
}

// updateDate is NULL when the batch carried no load date.
func (r InstanceInfoRecord) updateDate() any {
	if r.UpdateDate.IsZero() {
		return nil
	}
	return r.UpdateDate
}

// Writer writes the metadata and instance_info tables.
type Writer struct {
	schema *schema.Schema
	logger metdbload.Logger
}

// NewWriter creates a Writer. Panics if any dependency is nil.
func NewWriter(s *schema.Schema, logger metdbload.Logger) *Writer {
	if s == nil {
		panic("schema cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Writer{schema: s, logger: logger}
}

// Upsert stores group and description in the metadata table.
func (w *Writer) Upsert(ctx context.Context, q metdbload.Querier, group, description string) (metdbload.MetadataAction, error) {
	if group == metdbload.DefaultDatabaseGroup {
		return metdbload.MetadataSkipped, nil
	}

	var category, descr *string
	err := q.QueryRow(ctx, w.schema.QueryMetadata()).Scan(&category, &descr)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := q.Exec(ctx, w.schema.InsertMetadata(), group, description); err != nil {
			return 0, fmt.Errorf("failed to insert metadata: %w", err)
		}
		w.logger.Verbose("Inserted metadata group %q", group)
		return metdbload.MetadataInserted, nil
	case err != nil:
		return 0, fmt.Errorf("failed to read metadata: %w", err)
	}

	if deref(category) == group && deref(descr) == description {
		return metdbload.MetadataUnchanged, nil
	}
	if _, err := q.Exec(ctx, w.schema.UpdateMetadata(), group, description); err != nil {
		return 0, fmt.Errorf("failed to update metadata: %w", err)
	}
	w.logger.Verbose("Updated metadata group %q -> %q", deref(category), group)
	return metdbload.MetadataUpdated, nil
}

// WriteInstanceInfo allocates an instance_info_id and inserts rec with it.
func (w *Writer) WriteInstanceInfo(ctx context.Context, q metdbload.Querier, rec InstanceInfoRecord) (int64, error) {
	id, err := keys.NextID(ctx, q, schema.InstanceInfoTable, schema.InstanceInfoID, metdbload.InstanceInfoFloor)
	if err != nil {
		return metdbload.NoKey, err
	}
	rec.ID = id

	if _, err := q.Exec(ctx, w.schema.InsertInstanceInfo(),
		rec.ID, rec.Updater, rec.updateDate(), rec.LoadNote, rec.XML); err != nil {
		return metdbload.NoKey, fmt.Errorf("failed to insert instance_info: %w", err)
	}
	w.logger.Verbose("Wrote instance_info %d for %s", rec.ID, rec.Updater)
	return rec.ID, nil
}

// CurrentUpdater returns the login name of the OS user running the job.
func CurrentUpdater() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
