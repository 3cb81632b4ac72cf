// Package rules persists user-authored categorization rules and evaluates
// them against transactions. Rules are ordered by priority (higher first),
// then id; the first matching active rule wins and short-circuits.
package rules

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rentroll-dev/rentroll/internal/model"
	"github.com/rentroll-dev/rentroll/internal/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when a rule id does not exist.
var ErrNotFound = errors.New("rule not found")

// multiActionType marks rows whose action_value holds a JSON action list.
// Rows written before multi-action support carry a bare type+value pair;
// decodeActions accepts both encodings.
const multiActionType = "multi"

// Store is the SQLite-backed rule store.
type Store struct {
	db *sql.DB
}

// Open opens (creating and migrating if needed) the rule store at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules store: %w", err)
	}
	if err := sqlite.Migrate(db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating rules store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns rules in evaluation order (priority DESC, id ASC), optionally
// restricted to active rules.
func (s *Store) List(activeOnly bool) ([]model.Rule, error) {
	query := "SELECT id, name, criteria_field, criteria_match_type, criteria_value, action_type, action_value, is_active, priority, created_at FROM categorization_rules"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY priority DESC, id ASC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var result []model.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Get returns a single rule by id, or ErrNotFound.
func (s *Store) Get(id int64) (model.Rule, error) {
	row := s.db.QueryRow(
		"SELECT id, name, criteria_field, criteria_match_type, criteria_value, action_type, action_value, is_active, priority, created_at FROM categorization_rules WHERE id = ?",
		id,
	)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rule{}, ErrNotFound
	}
	return r, err
}

// Add inserts a rule and returns it with its assigned id.
func (s *Store) Add(r model.Rule) (model.Rule, error) {
	if len(r.Actions) == 0 {
		return model.Rule{}, errors.New("rule must carry at least one action")
	}

	actionType, actionValue, err := encodeActions(r.Actions)
	if err != nil {
		return model.Rule{}, err
	}

	res, err := s.db.Exec(
		`INSERT INTO categorization_rules
		 (name, criteria_field, criteria_match_type, criteria_value, action_type, action_value, is_active, priority)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Name, string(r.Field), string(r.MatchType), r.Value, actionType, actionValue, r.IsActive, r.Priority,
	)
	if err != nil {
		return model.Rule{}, fmt.Errorf("adding rule: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Rule{}, fmt.Errorf("adding rule: %w", err)
	}
	return s.Get(id)
}

// Update replaces a rule's mutable fields by id.
func (s *Store) Update(r model.Rule) error {
	if len(r.Actions) == 0 {
		return errors.New("rule must carry at least one action")
	}

	actionType, actionValue, err := encodeActions(r.Actions)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(
		`UPDATE categorization_rules
		 SET name = ?, criteria_field = ?, criteria_match_type = ?, criteria_value = ?,
		     action_type = ?, action_value = ?, is_active = ?, priority = ?
		 WHERE id = ?`,
		r.Name, string(r.Field), string(r.MatchType), r.Value, actionType, actionValue, r.IsActive, r.Priority, r.ID,
	)
	if err != nil {
		return fmt.Errorf("updating rule %d: %w", r.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating rule %d: %w", r.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a rule by id. Deleting an absent rule returns ErrNotFound.
func (s *Store) Delete(id int64) error {
	res, err := s.db.Exec("DELETE FROM categorization_rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting rule %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting rule %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Evaluate runs a transaction's fields through the active rules and returns
// the winning rule's actions and name, or (nil, "") when nothing matches.
func (s *Store) Evaluate(f Fields) ([]model.Action, string, error) {
	active, err := s.List(true)
	if err != nil {
		return nil, "", err
	}
	actions, name := EvaluateRules(active, f)
	return actions, name, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (model.Rule, error) {
	var (
		r           model.Rule
		field       string
		matchType   string
		actionType  string
		actionValue string
		createdAt   sql.NullString
	)
	err := row.Scan(&r.ID, &r.Name, &field, &matchType, &r.Value, &actionType, &actionValue, &r.IsActive, &r.Priority, &createdAt)
	if err != nil {
		return model.Rule{}, err
	}

	r.Field = model.RuleField(field)
	r.MatchType = model.MatchType(matchType)

	r.Actions, err = decodeActions(actionType, actionValue)
	if err != nil {
		return model.Rule{}, fmt.Errorf("rule %d: %w", r.ID, err)
	}

	if createdAt.Valid {
		r.CreatedAt = parseTimestamp(createdAt.String)
	}
	return r, nil
}

// encodeActions always writes the list encoding; single-action rules are a
// list of one.
func encodeActions(actions []model.Action) (actionType, actionValue string, err error) {
	data, err := json.Marshal(actions)
	if err != nil {
		return "", "", fmt.Errorf("encoding rule actions: %w", err)
	}
	return multiActionType, string(data), nil
}

// decodeActions accepts both the current JSON-list encoding and the legacy
// single type+value pair.
func decodeActions(actionType, actionValue string) ([]model.Action, error) {
	if actionType != multiActionType {
		return []model.Action{{Type: model.ActionType(actionType), Value: actionValue}}, nil
	}

	var actions []model.Action
	if err := json.Unmarshal([]byte(actionValue), &actions); err != nil {
		return nil, fmt.Errorf("decoding rule actions: %w", err)
	}
	return actions, nil
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
