package usecase

import (
	"context"
	"errors"
	"strings"

	"appointment-system/internal/converter"
	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/domain/entity"
	"appointment-system/internal/domain/repository"
	"appointment-system/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrDoctorIDRequired = errors.New("doctor id is required")
)

// CodeSequence hands out public doctor codes.
type CodeSequence interface {
	NextCode(ctx context.Context, db *gorm.DB) (string, error)
}

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.CreatedResponse, error)
	ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	DeleteDoctor(ctx context.Context, code string) error
	// SearchDoctors never fails: store errors are logged and yield no doctors.
	SearchDoctors(ctx context.Context, query string) []entity.Doctor
}

type doctorUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	sequence     CodeSequence
	auditService service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	sequence CodeSequence,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:           db,
		log:          log,
		doctorRepo:   doctorRepo,
		sequence:     sequence,
		auditService: auditService,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.CreatedResponse, error) {
	code, err := u.createDoctor(ctx, req)
	if isDuplicateKeyError(err, "code") {
		// Another writer took the code between NextCode and the insert.
		u.log.Warnf("Doctor code collision, retrying: %+v", err)
		code, err = u.createDoctor(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	return &dto.CreatedResponse{ID: code}, nil
}

func (u *doctorUsecase) createDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (string, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	code, err := u.sequence.NextCode(ctx, tx)
	if err != nil {
		return "", err
	}

	doctor := &entity.Doctor{
		Code:         code,
		Name:         strings.TrimSpace(req.Name),
		Hospital:     strings.TrimSpace(req.Hospital),
		Speciality:   strings.TrimSpace(req.Speciality),
		Availability: entity.JSON(req.Availability),
		ProfilePhoto: req.ProfilePhoto,
	}

	if err := u.doctorRepo.Create(tx, doctor); err != nil {
		if !isDuplicateKeyError(err, "code") {
			u.log.Warnf("Failed to create doctor: %+v", err)
		}
		return "", err
	}

	if err := u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionDoctorCreate, "doctor", doctor.Code, converter.DoctorToResponse(doctor)); err != nil {
		return "", err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return "", err
	}

	return doctor.Code, nil
}

func (u *doctorUsecase) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) DeleteDoctor(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrDoctorIDRequired
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByCode(tx, code)
	if err != nil {
		u.log.Warnf("Failed to find doctor by code: %+v", err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	rows, err := u.doctorRepo.DeleteByCode(tx, code)
	if err != nil {
		u.log.Warnf("Failed to delete doctor: %+v", err)
		return err
	}
	if rows == 0 {
		return ErrDoctorNotFound
	}

	if err := u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionDoctorDelete, "doctor", code, converter.DoctorToResponse(doctor)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

// SearchDoctors tries each tier in turn and returns the first non-empty one:
// exact name, name containing any token, any field containing any token, everyone.
func (u *doctorUsecase) SearchDoctors(ctx context.Context, query string) []entity.Doctor {
	db := u.db.WithContext(ctx)
	normalized := strings.ToLower(strings.TrimSpace(query))

	if normalized != "" {
		exact, err := u.doctorRepo.FindByExactName(db, normalized)
		if err != nil {
			u.log.Warnf("Failed to search doctors by exact name: %+v", err)
			return []entity.Doctor{}
		}
		if len(exact) > 0 {
			return exact
		}

		if tokens := searchTokens(normalized); len(tokens) > 0 {
			partial, err := u.doctorRepo.FindByNameTokens(db, tokens)
			if err != nil {
				u.log.Warnf("Failed to search doctors by name tokens: %+v", err)
				return []entity.Doctor{}
			}
			if len(partial) > 0 {
				return partial
			}

			broad, err := u.doctorRepo.FindByAnyField(db, tokens)
			if err != nil {
				u.log.Warnf("Failed to search doctors by any field: %+v", err)
				return []entity.Doctor{}
			}
			if len(broad) > 0 {
				return broad
			}
		}
	}

	all, err := u.doctorRepo.FindAll(db)
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return []entity.Doctor{}
	}
	if all == nil {
		return []entity.Doctor{}
	}
	return all
}

// searchTokens splits on whitespace and drops single-character tokens.
func searchTokens(query string) []string {
	var tokens []string
	for _, field := range strings.Fields(query) {
		if len([]rune(field)) > 1 {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
