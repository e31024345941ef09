package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type (
	GraveDefects struct {
		Moldy         float64 `json:"moldy"`
		Burned        float64 `json:"burned"`
		Germinated    float64 `json:"germinated"`
		InsectDamaged float64 `json:"insect_damaged"`
	}

	LightDefects struct {
		Crushed  float64 `json:"crushed"`
		Damaged  float64 `json:"damaged"`
		Immature float64 `json:"immature"`
		Broken   float64 `json:"broken"`
	}

	DefectBreakdown struct {
		Grave GraveDefects `json:"grave"`
		Light LightDefects `json:"light"`
	}

	Colorimetry struct {
		AverageL       float64 `json:"average_l"`
		StdDev         float64 `json:"std_dev"`
		Classification string  `json:"classification"` // dark, intermediate, light
		FinalScore     float64 `json:"final_score"`    // 5..10
	}
)

// Analysis is the immutable result of one sample classification.
type Analysis struct {
	ID               uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID                           `gorm:"type:uuid;not null;index" json:"user_id"`
	ImageKey         string                              `json:"-"`
	ImageURL         string                              `json:"image_url"`
	MimeType         string                              `json:"mime_type"`
	Species          string                              `json:"species"`
	Type             int                                 `json:"type"` // 1..3, 0 = out of type
	DefectPercentage float64                             `json:"defect_percentage"`
	Explanation      string                              `gorm:"type:text" json:"explanation"`
	Defects          datatypes.JSONType[DefectBreakdown] `json:"defects"`
	Colorimetry      datatypes.JSONType[Colorimetry]     `json:"colorimetry"`

	Timestamp
}

func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
