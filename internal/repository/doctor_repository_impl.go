package repository

import (
	"errors"
	"strings"

	"appointment-system/internal/domain/entity"
	domainRepo "appointment-system/internal/domain/repository"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) Create(db *gorm.DB, doctor *entity.Doctor) error {
	return db.Create(doctor).Error
}

func (r *doctorRepository) FindByCode(db *gorm.DB, code string) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Where("code = ?", code).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindAll(db *gorm.DB) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.Order("id ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) DeleteByCode(db *gorm.DB, code string) (int64, error) {
	result := db.Where("code = ?", code).Delete(&entity.Doctor{})
	return result.RowsAffected, result.Error
}

// MaxCodeNumber returns the largest numeric suffix among existing codes, or 0.
func (r *doctorRepository) MaxCodeNumber(db *gorm.DB) (int64, error) {
	var max int64
	err := db.Model(&entity.Doctor{}).
		Select("COALESCE(MAX(CAST(SUBSTRING(code FROM 2) AS BIGINT)), 0)").
		Where("code ~ ?", `^`+entity.DoctorCodePrefix+`[0-9]+$`).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *doctorRepository) FindByExactName(db *gorm.DB, name string) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.Where("LOWER(name) = ?", strings.ToLower(name)).
		Order("id ASC").
		Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) FindByNameTokens(db *gorm.DB, tokens []string) ([]entity.Doctor, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	query := db.Model(&entity.Doctor{})
	cond := db.Session(&gorm.Session{NewDB: true})
	for _, token := range tokens {
		cond = cond.Or("name ILIKE ?", containsPattern(token))
	}

	var doctors []entity.Doctor
	err := query.Where(cond).Order("id ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) FindByAnyField(db *gorm.DB, tokens []string) ([]entity.Doctor, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	query := db.Model(&entity.Doctor{})
	cond := db.Session(&gorm.Session{NewDB: true})
	for _, token := range tokens {
		pattern := containsPattern(token)
		cond = cond.Or(
			"name ILIKE ? OR speciality ILIKE ? OR hospital ILIKE ? OR CAST(availability->'days' AS TEXT) ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var doctors []entity.Doctor
	err := query.Where(cond).Order("id ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

// containsPattern builds an ILIKE pattern that matches token literally anywhere.
func containsPattern(token string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(token)) + "%"
}
