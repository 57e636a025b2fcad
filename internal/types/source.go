package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Source is one ingested document belonging to a notebook. ExtractedText is
// the full plain text pulled out of the original upload; segmentation reads
// from it at ingestion time.
type Source struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	NotebookID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"notebook_id"`
	Notebook      *Notebook      `gorm:"constraint:OnDelete:CASCADE;foreignKey:NotebookID;references:ID" json:"notebook,omitempty"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	Type          string         `gorm:"column:type;not null" json:"type"`
	ExtractedText string         `gorm:"column:extracted_text" json:"extracted_text"`
	Metadata      datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Source) TableName() string {
	return "source"
}
