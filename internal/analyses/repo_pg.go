package analyses

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const pgColumns = `id, user_id, analysis_type, age, gender, skin_type, hair_type,
       original_file_name, image_url, image_public_id,
       prompt, response, analysis_date, model_used,
       feedback, status, created_at, updated_at`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) (string, error) {
	const query = `
INSERT INTO skin_analyses (` + pgColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		string(analysis.AnalysisType),
		analysis.UserDetails.Age,
		analysis.UserDetails.Gender,
		nullString(analysis.UserDetails.SkinType),
		nullString(analysis.UserDetails.HairType),
		analysis.ImageData.OriginalFileName,
		analysis.ImageData.CloudinaryURL,
		analysis.ImageData.CloudinaryPublicID,
		analysis.AIAnalysis.Prompt,
		analysis.AIAnalysis.Response,
		parseStamp(analysis.AIAnalysis.AnalysisDate),
		analysis.AIAnalysis.ModelUsed,
		nullString(analysis.Feedback),
		analysis.Metadata.Status,
		parseStamp(analysis.Metadata.CreatedAt),
		parseStamp(analysis.Metadata.UpdatedAt),
	)
	if err != nil {
		return "", err
	}
	return analysis.ID, nil
}

// Get returns an analysis by ID.
func (r *PGRepo) Get(ctx context.Context, analysisID string) (Analysis, error) {
	query := `SELECT ` + pgColumns + ` FROM skin_analyses WHERE id = $1 LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return a, err
}

// ListByUser returns a user's analyses, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Analysis, error) {
	query := `SELECT ` + pgColumns + ` FROM skin_analyses WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Analysis, 0)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update merges the non-nil patch fields.
func (r *PGRepo) Update(ctx context.Context, analysisID string, patch Patch) error {
	const query = `
UPDATE skin_analyses
SET status = COALESCE($2, status),
    feedback = COALESCE($3, feedback),
    response = COALESCE($4, response),
    updated_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		analysisID,
		nullStringPtr(patch.Status),
		nullStringPtr(patch.Feedback),
		nullStringPtr(patch.Response),
		parseStamp(patch.UpdatedAt),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// Delete removes the analysis.
func (r *PGRepo) Delete(ctx context.Context, analysisID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM skin_analyses WHERE id = $1`, analysisID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var analysisType string
	var skinType, hairType, feedback sql.NullString
	var analysisDate, createdAt, updatedAt time.Time
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&analysisType,
		&a.UserDetails.Age,
		&a.UserDetails.Gender,
		&skinType,
		&hairType,
		&a.ImageData.OriginalFileName,
		&a.ImageData.CloudinaryURL,
		&a.ImageData.CloudinaryPublicID,
		&a.AIAnalysis.Prompt,
		&a.AIAnalysis.Response,
		&analysisDate,
		&a.AIAnalysis.ModelUsed,
		&feedback,
		&a.Metadata.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	a.AnalysisType = Type(analysisType)
	a.UserDetails.SkinType = skinType.String
	a.UserDetails.HairType = hairType.String
	a.Feedback = feedback.String
	a.AIAnalysis.AnalysisDate = formatTime(analysisDate)
	a.Metadata.CreatedAt = formatTime(createdAt)
	a.Metadata.UpdatedAt = formatTime(updatedAt)
	return a, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullStringPtr(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// parseStamp turns a stored RFC 3339 string into a time. Unparseable input becomes now.
func parseStamp(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Now().UTC()
	}
	return t.UTC()
}

var _ Repo = (*PGRepo)(nil)
