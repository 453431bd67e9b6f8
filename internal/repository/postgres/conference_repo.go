package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"
)

type conferenceRepository struct {
	DB *sql.DB
}

// NewConferenceRepository returns a Postgres-backed conference repository.
func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{
		DB: db,
	}
}

const conferenceColumns = `key, name, description, organizer_user_id, city, topics, start_date, end_date, month, max_attendees, seats_available, created_at, updated_at`

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	q := `
		INSERT INTO conferences (` + conferenceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, q,
		c.Key.Encode(), c.Name, c.Description, c.OrganizerUserID, c.City,
		pq.Array(c.Topics), c.StartDate, c.EndDate, c.Month,
		c.MaxAttendees, c.SeatsAvailable, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *conferenceRepository) GetByKey(ctx context.Context, key domain.Key) (*domain.Conference, error) {
	q := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE key = $1
	`
	c, err := scanConference(r.DB.QueryRowContext(ctx, q, key.Encode()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) Update(ctx context.Context, c *domain.Conference) error {
	q := `
		UPDATE conferences
		SET name = $2, description = $3, city = $4, topics = $5,
		    start_date = $6, end_date = $7, month = $8,
		    max_attendees = $9, seats_available = $10, updated_at = $11
		WHERE key = $1
	`
	res, err := r.DB.ExecContext(ctx, q,
		c.Key.Encode(), c.Name, c.Description, c.City, pq.Array(c.Topics),
		c.StartDate, c.EndDate, c.Month, c.MaxAttendees, c.SeatsAvailable, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *conferenceRepository) ListByOrganizer(ctx context.Context, userID string) ([]*domain.Conference, error) {
	q := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE organizer_user_id = $1
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConferences(rows)
}

func (r *conferenceRepository) GetMulti(ctx context.Context, keys []domain.Key) ([]*domain.Conference, error) {
	encoded := make([]string, len(keys))
	for i, key := range keys {
		encoded[i] = key.Encode()
	}
	q := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE key = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, q, pq.Array(encoded))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found, err := collectConferences(rows)
	if err != nil {
		return nil, err
	}

	// Re-order to match the input keys, with nil entries for absent keys.
	byKey := make(map[string]*domain.Conference, len(found))
	for _, c := range found {
		byKey[c.Key.Encode()] = c
	}
	out := make([]*domain.Conference, len(keys))
	for i, enc := range encoded {
		out[i] = byKey[enc]
	}
	return out, nil
}

// propertyColumns maps plan property names to conference columns. Plans only
// carry properties from the closed field set, plus "name" for ordering.
var propertyColumns = map[string]string{
	"name":         "name",
	"city":         "city",
	"topics":       "topics",
	"month":        "month",
	"maxAttendees": "max_attendees",
}

var operatorSQL = map[query.Operator]string{
	query.OpEqual:          "=",
	query.OpGreater:        ">",
	query.OpGreaterOrEqual: ">=",
	query.OpLess:           "<",
	query.OpLessOrEqual:    "<=",
	query.OpNotEqual:       "<>",
}

func (r *conferenceRepository) Query(ctx context.Context, plan *query.Plan) ([]*domain.Conference, error) {
	var (
		where []string
		args  []any
	)
	for _, node := range plan.Nodes {
		pred, err := nodePredicate(node, &args)
		if err != nil {
			return nil, err
		}
		where = append(where, pred)
	}

	var order []string
	for _, prop := range plan.OrderBy {
		col, ok := propertyColumns[prop]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort property %q", domain.ErrInvalidInput, prop)
		}
		order = append(order, col+" ASC")
	}

	q := `SELECT ` + conferenceColumns + ` FROM conferences`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY ` + strings.Join(order, ", ")

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConferences(rows)
}

// nodePredicate renders one filter node as SQL, appending its value to args.
// The topics column is multi-valued: a predicate holds when any element
// satisfies the comparison.
func nodePredicate(node query.Node, args *[]any) (string, error) {
	col, ok := propertyColumns[node.Property]
	if !ok {
		return "", fmt.Errorf("%w: unknown filter property %q", domain.ErrInvalidInput, node.Property)
	}
	op, ok := operatorSQL[node.Op]
	if !ok {
		return "", fmt.Errorf("%w: unknown filter operator %d", domain.ErrInvalidInput, node.Op)
	}
	*args = append(*args, node.Value)
	placeholder := fmt.Sprintf("$%d", len(*args))

	if col == "topics" {
		if node.Op == query.OpEqual {
			return placeholder + " = ANY(topics)", nil
		}
		return "EXISTS (SELECT 1 FROM unnest(topics) AS topic WHERE topic " + op + " " + placeholder + ")", nil
	}
	return col + " " + op + " " + placeholder, nil
}

func (r *conferenceRepository) ListNearlySoldOut(ctx context.Context, maxSeats int) ([]*domain.Conference, error) {
	q := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE seats_available > 0 AND seats_available <= $1
		ORDER BY name ASC
	`
	rows, err := r.DB.QueryContext(ctx, q, maxSeats)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConferences(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConference(row rowScanner) (*domain.Conference, error) {
	c := &domain.Conference{}
	var (
		encKey    string
		topics    []string
		startNull sql.NullTime
		endNull   sql.NullTime
	)
	err := row.Scan(
		&encKey, &c.Name, &c.Description, &c.OrganizerUserID, &c.City,
		pq.Array(&topics), &startNull, &endNull, &c.Month,
		&c.MaxAttendees, &c.SeatsAvailable, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Key, err = domain.DecodeKey(encKey)
	if err != nil {
		return nil, fmt.Errorf("decode conference key: %w", err)
	}
	c.Topics = topics
	if startNull.Valid {
		c.StartDate = &startNull.Time
	}
	if endNull.Valid {
		c.EndDate = &endNull.Time
	}
	return c, nil
}

func collectConferences(rows *sql.Rows) ([]*domain.Conference, error) {
	out := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
