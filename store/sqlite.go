package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"annah-server/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound covers both missing rows and rows owned by another user, so
// callers cannot probe for foreign-owned ids.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// An in-memory database exists per connection; keep the pool at one
	// so tests see a single database.
	if strings.Contains(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT,
		due_date DATETIME,
		completed BOOLEAN DEFAULT FALSE,
		category TEXT DEFAULT 'personal',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		recurrence TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// User operations

func (s *Store) CreateUser(username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, user.ID, user.Username, user.PasswordHash, user.CreatedAt)

	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(`
		SELECT id, username, password_hash, created_at
		FROM users WHERE username = ?
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByID(id string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(`
		SELECT id, username, password_hash, created_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) ValidatePassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// Task operations

func (s *Store) CreateTask(userID, title, description string, dueDate *time.Time, category string) (*models.Task, error) {
	if category == "" {
		category = "personal"
	}

	task := &models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Completed:   false,
		Category:    category,
		CreatedAt:   time.Now(),
	}

	var due sql.NullTime
	if dueDate != nil {
		due = sql.NullTime{Time: *dueDate, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO tasks (id, user_id, title, description, due_date, completed, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID, task.UserID, task.Title, task.Description, due, task.Completed, task.Category, task.CreatedAt)

	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, COALESCE(description, ''), due_date, completed, category, created_at
		FROM tasks WHERE id = ?
	`, id)
	return scanTask(row)
}

func (s *Store) GetTasksForUser(userID string) ([]models.Task, error) {
	return s.queryTasks(`
		SELECT id, user_id, title, COALESCE(description, ''), due_date, completed, category, created_at
		FROM tasks WHERE user_id = ? ORDER BY created_at
	`, userID)
}

// GetAllTasks returns every task for every user. The reminder scanner reads
// the full set once per tick.
func (s *Store) GetAllTasks() ([]models.Task, error) {
	return s.queryTasks(`
		SELECT id, user_id, title, COALESCE(description, ''), due_date, completed, category, created_at
		FROM tasks ORDER BY created_at
	`)
}

// CompleteTask flips a task to completed. The transition is one-way; there is
// no uncomplete. Returns ErrNotFound when the task does not exist or belongs
// to a different user.
func (s *Store) CompleteTask(userID, taskID string) (*models.Task, error) {
	res, err := s.db.Exec(`
		UPDATE tasks SET completed = TRUE WHERE id = ? AND user_id = ?
	`, taskID, userID)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetTask(taskID)
}

func (s *Store) queryTasks(query string, args ...interface{}) ([]models.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		var due sql.NullTime
		err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &due, &t.Completed, &t.Category, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		if due.Valid {
			t.DueDate = &due.Time
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row *sql.Row) (*models.Task, error) {
	var t models.Task
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &due, &t.Completed, &t.Category, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return &t, nil
}

// Event operations

func (s *Store) CreateEvent(userID, title, description string, startDate, endDate time.Time, recurrence string) (*models.Event, error) {
	event := &models.Event{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
		Recurrence:  recurrence,
		CreatedAt:   time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO events (id, user_id, title, description, start_date, end_date, recurrence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.UserID, event.Title, event.Description, event.StartDate, event.EndDate, event.Recurrence, event.CreatedAt)

	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Store) GetEventsForUser(userID string) ([]models.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, COALESCE(description, ''), start_date, end_date, COALESCE(recurrence, ''), created_at
		FROM events WHERE user_id = ? ORDER BY start_date
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Recurrence, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
