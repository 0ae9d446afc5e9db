package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"mentor/models"

	_ "github.com/lib/pq"
)

type PostgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(databaseURL string) (*PostgresReportRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresReportRepository{db: db}, nil
}

func (r *PostgresReportRepository) SaveReport(userID string, report *models.QuizReport) error {
	breakdownJSON, err := json.Marshal(report.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	query := `
		INSERT INTO mentor.quiz_reports (user_id, topic, difficulty, score, total, percentage, breakdown, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.Exec(query, userID, report.Topic, report.Difficulty,
		report.Score, report.Total, report.Percentage, breakdownJSON,
		report.StartedAt, report.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save quiz report: %w", err)
	}

	return nil
}

func (r *PostgresReportRepository) LoadReports(userID string, limit int) ([]models.QuizReport, error) {
	query := `
		SELECT topic, difficulty, score, total, percentage, breakdown, started_at, finished_at
		FROM mentor.quiz_reports
		WHERE user_id = $1
		ORDER BY finished_at DESC
		LIMIT $2`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz reports: %w", err)
	}
	defer rows.Close()

	reports := make([]models.QuizReport, 0)
	for rows.Next() {
		var report models.QuizReport
		var breakdownJSON []byte
		err := rows.Scan(&report.Topic, &report.Difficulty, &report.Score,
			&report.Total, &report.Percentage, &breakdownJSON,
			&report.StartedAt, &report.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz report: %w", err)
		}

		if err := json.Unmarshal(breakdownJSON, &report.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
		}

		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over quiz reports: %w", err)
	}

	return reports, nil
}

func (r *PostgresReportRepository) Close() error {
	return r.db.Close()
}
