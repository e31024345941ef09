package domain

import (
	"mime/multipart"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
)

var (
	MessageSuccessClassify    = "sample classified successfully"
	MessageSuccessGetAnalyses = "analyses retrieved successfully"

	MessageFailedClassify    = "failed to classify sample"
	MessageFailedGetAnalyses = "failed to retrieve analyses"
	MessageNotABeanSample    = "the image does not look like a bean sample, please take another photo"

	ErrNotABeanSample   = newError(KindRejectedContent, "image is not a valid bean sample")
	ErrAnalysisNotFound = newError(KindNotFound, "analysis not found")
	ErrImageRequired    = newError(KindValidation, "image is required")
)

// NotABeanType is the provider's sentinel for images that are not bean samples.
const NotABeanType = -1

type (
	ClassifyRequest struct {
		Image *multipart.FileHeader `form:"image" validate:"required"`
	}

	ClassificationSummary struct {
		Type             int     `json:"type"`
		DefectPercentage float64 `json:"defect_percentage"`
		Explanation      string  `json:"explanation"`
	}

	Classification struct {
		Summary ClassificationSummary    `json:"summary"`
		Defects entities.DefectBreakdown `json:"defects"`
	}

	// ClassificationResult is the strict JSON document returned by the provider.
	ClassificationResult struct {
		Species        string               `json:"species"`
		Classification Classification       `json:"classification"`
		Colorimetry    entities.Colorimetry `json:"colorimetry"`
	}
)

func (r ClassificationResult) IsNotABean() bool {
	return r.Classification.Summary.Type == NotABeanType
}
