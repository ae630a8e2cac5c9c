package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"glownexa-backend/internal/ai"
	"glownexa-backend/internal/media"
	"glownexa-backend/internal/shared/metrics"
	"glownexa-backend/internal/shared/telemetry"
)

// ErrMediaNotConfigured is returned by Analyze when no image host is wired.
var ErrMediaNotConfigured = errors.New("media store not configured")

// SkinInput is a skin assessment the client already produced.
type SkinInput struct {
	Age              int    `json:"age" validate:"required,gte=1,lte=120"`
	Gender           string `json:"gender" validate:"required"`
	SkinType         string `json:"skinType" validate:"required"`
	OriginalFileName string `json:"originalFileName"`
	ImageURL         string `json:"cloudinaryUrl" validate:"omitempty,url"`
	PublicID         string `json:"cloudinaryPublicId"`
	Prompt           string `json:"prompt"`
	Response         string `json:"response" validate:"required"`
}

// HairInput is a hair assessment the client already produced. The prompt is always derived.
type HairInput struct {
	Age              int    `json:"age" validate:"required,gte=1,lte=120"`
	Gender           string `json:"gender" validate:"required"`
	HairType         string `json:"hairType" validate:"required"`
	OriginalFileName string `json:"originalFileName"`
	ImageURL         string `json:"cloudinaryUrl" validate:"omitempty,url"`
	PublicID         string `json:"cloudinaryPublicId"`
	Response         string `json:"response" validate:"required"`
}

// UpdateInput lists the fields a user may change after the fact.
type UpdateInput struct {
	Status   *string `json:"status" validate:"omitempty,oneof=completed archived"`
	Feedback *string `json:"feedback" validate:"omitempty,max=2000"`
	Response *string `json:"response"`
}

// AnalyzeInput is a photo plus the details needed to prompt the model.
type AnalyzeInput struct {
	Type        Type   `validate:"required,oneof=skin hair"`
	Age         int    `validate:"required,gte=1,lte=120"`
	Gender      string `validate:"required"`
	SkinType    string `validate:"required_if=Type skin"`
	HairType    string `validate:"required_if=Type hair"`
	FileName    string
	ContentType string
	Body        io.Reader
}

// Service contains business logic for analyses.
type Service struct {
	Repo  Repo
	Media *media.Service
	AI    ai.Analyzer
	Now   func() time.Time
}

// NewService constructs a Service. mediaSvc and analyzer may be nil when only saving is needed.
func NewService(repo Repo, mediaSvc *media.Service, analyzer ai.Analyzer) *Service {
	return &Service{Repo: repo, Media: mediaSvc, AI: analyzer, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// SaveSkin stores a completed skin assessment and returns its id.
func (s *Service) SaveSkin(ctx context.Context, userID string, in SkinInput) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := checkStruct(in); err != nil {
		return "", err
	}
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		prompt = ai.SkinPrompt(in.Age, in.Gender, in.SkinType)
	}
	record := s.newRecord(userID, TypeSkin,
		UserDetails{Age: in.Age, Gender: in.Gender, SkinType: in.SkinType},
		ImageData{OriginalFileName: in.OriginalFileName, CloudinaryURL: in.ImageURL, CloudinaryPublicID: in.PublicID},
		prompt, in.Response, ai.DefaultModel)
	return s.create(ctx, record)
}

// SaveHair stores a completed hair assessment and returns its id.
func (s *Service) SaveHair(ctx context.Context, userID string, in HairInput) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := checkStruct(in); err != nil {
		return "", err
	}
	record := s.newRecord(userID, TypeHair,
		UserDetails{Age: in.Age, Gender: in.Gender, HairType: in.HairType},
		ImageData{OriginalFileName: in.OriginalFileName, CloudinaryURL: in.ImageURL, CloudinaryPublicID: in.PublicID},
		ai.HairPrompt(in.Age, in.Gender, in.HairType), in.Response, ai.DefaultModel)
	return s.create(ctx, record)
}

// ListByUser returns the user's analyses newest first. limit <= 0 means no limit.
func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	list, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(list)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []Analysis{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}

// Get returns one of the user's analyses. Records owned by someone else are reported as missing.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if strings.TrimSpace(analysisID) == "" {
		return Analysis{}, ErrNotFound
	}
	a, err := s.Repo.Get(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// Update merges in and stamps metadata.updatedAt.
func (s *Service) Update(ctx context.Context, userID, analysisID string, in UpdateInput) (Analysis, error) {
	if err := checkStruct(in); err != nil {
		return Analysis{}, err
	}
	current, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	patch := Patch{
		Status:    in.Status,
		Feedback:  in.Feedback,
		Response:  in.Response,
		UpdatedAt: formatTime(s.now()),
	}
	if err := s.Repo.Update(ctx, analysisID, patch); err != nil {
		return Analysis{}, err
	}
	return patch.Apply(current), nil
}

// Delete removes the record and, best effort, its hosted image.
func (s *Service) Delete(ctx context.Context, userID, analysisID string) error {
	current, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, analysisID); err != nil {
		return err
	}
	if publicID := current.ImageData.CloudinaryPublicID; publicID != "" && s.Media != nil {
		if err := s.Media.Delete(ctx, publicID); err != nil && !errors.Is(err, media.ErrNotFound) {
			telemetry.Error("analysis.image_delete_failed", map[string]any{
				"user_id":     userID,
				"analysis_id": analysisID,
				"public_id":   publicID,
				"error":       err,
			})
		}
	}
	telemetry.Info("analysis.deleted", map[string]any{"user_id": userID, "analysis_id": analysisID})
	return nil
}

// Analyze hosts the photo, asks the model for an assessment and stores the result.
func (s *Service) Analyze(ctx context.Context, userID string, in AnalyzeInput) (Analysis, error) {
	start := time.Now()
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := checkStruct(in); err != nil {
		return Analysis{}, err
	}
	if s.Media == nil {
		return Analysis{}, ErrMediaNotConfigured
	}
	if s.AI == nil {
		return Analysis{}, ai.ErrNotConfigured
	}
	if in.Body == nil {
		return Analysis{}, &media.ValidationError{Msg: "No file provided"}
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, media.MaxUploadBytes+1))
	if err != nil {
		return Analysis{}, fmt.Errorf("read image: %w", err)
	}
	asset, err := s.Media.Upload(ctx, media.UploadInput{
		UserID:      userID,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		if !errors.Is(err, media.ErrValidation) {
			metrics.IncAnalysisFailed("upload")
		}
		return Analysis{}, err
	}

	details := UserDetails{Age: in.Age, Gender: in.Gender}
	var prompt string
	if in.Type == TypeHair {
		details.HairType = in.HairType
		prompt = ai.HairPrompt(in.Age, in.Gender, in.HairType)
	} else {
		details.SkinType = in.SkinType
		prompt = ai.SkinPrompt(in.Age, in.Gender, in.SkinType)
	}

	result, err := s.AI.Analyze(ctx, ai.Input{
		Prompt:   prompt,
		Image:    data,
		MimeType: in.ContentType,
	})
	if err != nil {
		metrics.IncAnalysisFailed("model")
		telemetry.Error("analysis.model_failed", map[string]any{
			"user_id":   userID,
			"type":      string(in.Type),
			"public_id": asset.PublicID,
			"error":     err,
		})
		s.discardImage(ctx, asset.PublicID)
		return Analysis{}, fmt.Errorf("analyze: %w", err)
	}

	model := result.Model
	if model == "" {
		model = ai.DefaultModel
	}
	record := s.newRecord(userID, in.Type, details,
		ImageData{OriginalFileName: in.FileName, CloudinaryURL: asset.URL, CloudinaryPublicID: asset.PublicID},
		prompt, result.Text, model)
	id, err := s.create(ctx, record)
	if err != nil {
		metrics.IncAnalysisFailed("store")
		telemetry.Error("analysis.store_failed", map[string]any{
			"user_id":   userID,
			"public_id": asset.PublicID,
			"error":     err,
		})
		s.discardImage(ctx, asset.PublicID)
		return Analysis{}, err
	}
	record.ID = id
	metrics.ObserveAnalysisDurationMs(float64(time.Since(start).Milliseconds()))
	return record, nil
}

func (s *Service) newRecord(userID string, typ Type, details UserDetails, image ImageData, prompt, response, model string) Analysis {
	stamp := formatTime(s.now())
	return Analysis{
		UserID:       userID,
		AnalysisType: typ,
		UserDetails:  details,
		ImageData:    image,
		AIAnalysis: AIAnalysis{
			Prompt:       prompt,
			Response:     response,
			AnalysisDate: stamp,
			ModelUsed:    model,
		},
		Metadata: Metadata{
			CreatedAt: stamp,
			UpdatedAt: stamp,
			Status:    StatusCompleted,
		},
	}
}

// discardImage removes an upload whose analysis was not stored. Failures are logged only.
func (s *Service) discardImage(ctx context.Context, publicID string) {
	if err := s.Media.Delete(ctx, publicID); err != nil && !errors.Is(err, media.ErrNotFound) {
		telemetry.Error("analysis.image_cleanup_failed", map[string]any{"public_id": publicID, "error": err})
	}
}

func (s *Service) create(ctx context.Context, record Analysis) (string, error) {
	id, err := s.Repo.Create(ctx, record)
	if err != nil {
		return "", err
	}
	metrics.IncAnalysisCreated(string(record.AnalysisType))
	telemetry.Info("analysis.created", map[string]any{
		"user_id":     record.UserID,
		"analysis_id": id,
		"type":        string(record.AnalysisType),
	})
	return id, nil
}
