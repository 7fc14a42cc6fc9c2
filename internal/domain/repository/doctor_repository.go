package repository

import (
	"appointment-system/internal/domain/entity"

	"gorm.io/gorm"
)

// DoctorRepository reads and writes the doctor directory. Lookups by a single
// key return (nil, nil) when nothing matches.
type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByCode(db *gorm.DB, code string) (*entity.Doctor, error)
	FindAll(db *gorm.DB) ([]entity.Doctor, error)
	DeleteByCode(db *gorm.DB, code string) (int64, error)
	MaxCodeNumber(db *gorm.DB) (int64, error)

	// Search tiers, from narrowest to broadest.
	FindByExactName(db *gorm.DB, name string) ([]entity.Doctor, error)
	FindByNameTokens(db *gorm.DB, tokens []string) ([]entity.Doctor, error)
	FindByAnyField(db *gorm.DB, tokens []string) ([]entity.Doctor, error)
}
