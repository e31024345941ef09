package analysis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/logging"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxSampleBytes = 10 << 20

type (
	AnalysisService interface {
		Classify(ctx context.Context, userID string, req domain.ClassifyRequest) (*entities.Analysis, error)
		GetByID(ctx context.Context, analysisID, viewerID, viewerRole string) (*entities.Analysis, error)
		ListByUser(ctx context.Context, userID string) ([]*entities.Analysis, error)
	}

	analysisService struct {
		analysisRepository AnalysisRepository
		classifier         Classifier
		s3                 storage.AwsS3
	}
)

func NewAnalysisService(analysisRepository AnalysisRepository, classifier Classifier, s3 storage.AwsS3) AnalysisService {
	return &analysisService{
		analysisRepository: analysisRepository,
		classifier:         classifier,
		s3:                 s3,
	}
}

func sampleMimeType(header, filename string) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

// Classify uploads the sample, asks the classifier about it and stores the
// result. Rejected and failed samples leave nothing behind.
func (s *analysisService) Classify(ctx context.Context, userID string, req domain.ClassifyRequest) (*entities.Analysis, error) {
	if req.Image == nil {
		return nil, domain.ErrImageRequired
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	file, err := req.Image.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSampleBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.ErrImageRequired
	}
	if len(data) > maxSampleBytes {
		return nil, domain.NewValidationError("image must be at most 10MB")
	}

	mimeType := sampleMimeType(req.Image.Header.Get("Content-Type"), req.Image.Filename)
	if detected := http.DetectContentType(data); strings.HasPrefix(detected, "image/") {
		mimeType = detected
	}
	if !slices.Contains(storage.AllowImage, mimeType) {
		return nil, domain.NewValidationError("unsupported image type %s", mimeType)
	}

	analysisID := uuid.New()
	var imageKey string
	if s.s3 != nil {
		key, err := s.s3.UploadBytes(ctx, analysisID.String()+filepath.Ext(req.Image.Filename), data, mimeType, "samples/"+owner.String())
		switch {
		case err == nil:
			imageKey = key
		case errors.Is(err, storage.ErrStorageNotConfigured):
			logging.LogEvent("sample_upload_skipped", map[string]interface{}{"user_id": userID})
		default:
			return nil, domain.NewExternalServiceError("storage", err)
		}
	}

	result, err := s.classifier.Classify(ctx, data, mimeType)
	if err != nil {
		s.discard(imageKey)
		logging.LogError("classification_failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, domain.NewExternalServiceError("classifier", err)
	}
	if result.IsNotABean() {
		s.discard(imageKey)
		logging.LogEvent("classification_rejected", map[string]interface{}{
			"user_id": userID,
		})
		return nil, domain.ErrNotABeanSample
	}

	analysis := &entities.Analysis{
		ID:               analysisID,
		UserID:           owner,
		ImageKey:         imageKey,
		MimeType:         mimeType,
		Species:          result.Species,
		Type:             result.Classification.Summary.Type,
		DefectPercentage: result.Classification.Summary.DefectPercentage,
		Explanation:      result.Classification.Summary.Explanation,
		Defects:          datatypes.NewJSONType(result.Classification.Defects),
		Colorimetry:      datatypes.NewJSONType(result.Colorimetry),
	}
	if imageKey != "" {
		analysis.ImageURL = s.s3.GetPublicLinkKey(imageKey)
	}

	if err := s.analysisRepository.CreateAnalysis(ctx, analysis); err != nil {
		s.discard(imageKey)
		return nil, err
	}
	return analysis, nil
}

// discard removes an uploaded sample that will not be referenced. It runs
// on a fresh context so a cancelled request still cleans up.
func (s *analysisService) discard(key string) {
	if key == "" {
		return
	}
	if err := s.s3.DeleteFile(context.Background(), key); err != nil {
		logging.LogError("sample_cleanup", err, map[string]interface{}{"key": key})
	}
}

// GetByID is open to the analysis owner and to representatives, who read
// analyses linked from harvests. Anyone else gets ErrAnalysisNotFound.
func (s *analysisService) GetByID(ctx context.Context, analysisID, viewerID, viewerRole string) (*entities.Analysis, error) {
	id, err := uuid.Parse(analysisID)
	if err != nil {
		return nil, domain.ErrAnalysisNotFound
	}
	analysis, err := s.analysisRepository.GetAnalysisByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, err
	}
	if analysis.UserID.String() != viewerID && viewerRole != domain.RoleRepresentative {
		return nil, domain.ErrAnalysisNotFound
	}
	return analysis, nil
}

func (s *analysisService) ListByUser(ctx context.Context, userID string) ([]*entities.Analysis, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	return s.analysisRepository.ListByUser(ctx, owner)
}
