package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/phani-001/FixMyTown/internal/domain/entity"
	"github.com/phani-001/FixMyTown/internal/domain/repository"
)

type complaintRepo struct {
	db *sql.DB
}

func NewComplaintRepository(db *sql.DB) repository.ComplaintRepository {
	return &complaintRepo{db: db}
}

const complaintColumns = `id, title, COALESCE(description, '') as description, category, status, priority,
	location_address, location_lat, location_lng, images,
	citizen_id, COALESCE(assigned_to, '') as assigned_to, COALESCE(assigned_department, '') as assigned_department,
	submitted_at, updated_at, revision`

func (r *complaintRepo) Create(ctx context.Context, c *entity.Complaint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO complaints (id, title, description, category, status, priority,
			location_address, location_lat, location_lng, images,
			citizen_id, assigned_to, assigned_department, submitted_at, updated_at, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = tx.ExecContext(ctx, query,
		c.ID,
		c.Title,
		c.Description,
		c.Category,
		c.Status,
		c.Priority,
		c.Location.Address,
		c.Location.Lat,
		c.Location.Lng,
		pq.Array(c.Images),
		c.CitizenID,
		nullIfEmpty(c.AssignedTo),
		nullIfEmpty(c.AssignedDepartment),
		c.SubmittedAt,
		c.UpdatedAt,
		c.Revision,
	)
	if err != nil {
		return err
	}

	// Le journal est semé dans la même transaction que la création :
	// un signalement persistant a toujours au moins une entrée
	for i := range c.Timeline {
		e := &c.Timeline[i]
		err = tx.QueryRowContext(ctx,
			`INSERT INTO complaint_timeline (complaint_id, status, note, user_id, user_name, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq`,
			c.ID, e.Status, e.Note, nullIfEmpty(e.UserID), nullIfEmpty(e.UserName), e.Timestamp,
		).Scan(&e.Seq)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *complaintRepo) List(ctx context.Context, filter repository.ComplaintFilter) ([]entity.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints`

	// Construction du WHERE conjonctif : seuls les prédicats fournis comptent
	var args []interface{}
	var conds []string
	addCond := func(column string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.CitizenID != "" {
		addCond("citizen_id", filter.CitizenID)
	}
	if filter.AssignedTo != "" {
		addCond("assigned_to", filter.AssignedTo)
	}
	if filter.Status != "" {
		addCond("status", string(filter.Status))
	}
	if filter.Category != "" {
		addCond("category", string(filter.Category))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY submitted_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	complaints := []entity.Complaint{}
	var ids []string
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, *c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return complaints, nil
	}

	timelines, err := r.loadTimelines(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := r.loadComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range complaints {
		complaints[i].Timeline = timelines[complaints[i].ID]
		complaints[i].Comments = comments[complaints[i].ID]
		if complaints[i].Timeline == nil {
			complaints[i].Timeline = []entity.TimelineEntry{}
		}
		if complaints[i].Comments == nil {
			complaints[i].Comments = []entity.Comment{}
		}
	}
	return complaints, nil
}

func (r *complaintRepo) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	c, err := scanComplaint(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	timelines, err := r.loadTimelines(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	comments, err := r.loadComments(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	c.Timeline = timelines[id]
	c.Comments = comments[id]
	if c.Timeline == nil {
		c.Timeline = []entity.TimelineEntry{}
	}
	if c.Comments == nil {
		c.Comments = []entity.Comment{}
	}
	return c, nil
}

func (r *complaintRepo) Update(ctx context.Context, c *entity.Complaint, expectedRevision int64) (bool, error) {
	query := `UPDATE complaints SET
			title = $2, description = $3, category = $4, status = $5, priority = $6,
			location_address = $7, location_lat = $8, location_lng = $9, images = $10,
			assigned_to = $11, assigned_department = $12, updated_at = $13,
			revision = revision + 1
		WHERE id = $1 AND ($14 < 0 OR revision = $14)`
	res, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Title,
		c.Description,
		c.Category,
		c.Status,
		c.Priority,
		c.Location.Address,
		c.Location.Lat,
		c.Location.Lng,
		pq.Array(c.Images),
		nullIfEmpty(c.AssignedTo),
		nullIfEmpty(c.AssignedDepartment),
		c.UpdatedAt,
		expectedRevision,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *complaintRepo) AppendTimeline(ctx context.Context, complaintID string, entry *entity.TimelineEntry) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO complaint_timeline (complaint_id, status, note, user_id, user_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq`,
		complaintID, entry.Status, entry.Note, nullIfEmpty(entry.UserID), nullIfEmpty(entry.UserName), entry.Timestamp,
	).Scan(&entry.Seq)
}

func (r *complaintRepo) AppendComment(ctx context.Context, complaintID string, comment *entity.Comment) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO complaint_comments (complaint_id, author_id, author_name, author_role, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING seq`,
		complaintID, comment.AuthorID, comment.AuthorName, comment.AuthorRole, comment.Text, comment.Timestamp,
	).Scan(&comment.Seq)
}

func (r *complaintRepo) Delete(ctx context.Context, id string) (bool, error) {
	// Les tables timeline/comments sont en ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *complaintRepo) CountByCategorySince(ctx context.Context, category entity.ComplaintCategory, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM complaints WHERE category = $1 AND submitted_at >= $2`,
		category, since,
	).Scan(&count)
	return count, err
}

func (r *complaintRepo) loadTimelines(ctx context.Context, ids []string) (map[string][]entity.TimelineEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT complaint_id, seq, status, COALESCE(note, '') as note,
			COALESCE(user_id, '') as user_id, COALESCE(user_name, '') as user_name, created_at
		 FROM complaint_timeline WHERE complaint_id = ANY($1) ORDER BY seq ASC`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]entity.TimelineEntry)
	for rows.Next() {
		var cid string
		var e entity.TimelineEntry
		if err := rows.Scan(&cid, &e.Seq, &e.Status, &e.Note, &e.UserID, &e.UserName, &e.Timestamp); err != nil {
			return nil, err
		}
		result[cid] = append(result[cid], e)
	}
	return result, rows.Err()
}

func (r *complaintRepo) loadComments(ctx context.Context, ids []string) (map[string][]entity.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT complaint_id, seq, author_id, author_name, author_role, body, created_at
		 FROM complaint_comments WHERE complaint_id = ANY($1) ORDER BY seq ASC`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]entity.Comment)
	for rows.Next() {
		var cid string
		var cm entity.Comment
		if err := rows.Scan(&cid, &cm.Seq, &cm.AuthorID, &cm.AuthorName, &cm.AuthorRole, &cm.Text, &cm.Timestamp); err != nil {
			return nil, err
		}
		result[cid] = append(result[cid], cm)
	}
	return result, rows.Err()
}

// scanComplaint mappe une ligne complaints vers l'entité (sans journal ni commentaires)
func scanComplaint(row interface{ Scan(...interface{}) error }) (*entity.Complaint, error) {
	c := &entity.Complaint{}
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Status,
		&c.Priority,
		&c.Location.Address,
		&lat,
		&lng,
		pq.Array(&c.Images),
		&c.CitizenID,
		&c.AssignedTo,
		&c.AssignedDepartment,
		&c.SubmittedAt,
		&c.UpdatedAt,
		&c.Revision,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		c.Location.Lat = &lat.Float64
	}
	if lng.Valid {
		c.Location.Lng = &lng.Float64
	}
	if c.Images == nil {
		c.Images = []string{}
	}
	return c, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
