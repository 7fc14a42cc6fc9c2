package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"appointment-system/internal/domain/entity"
	"appointment-system/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DoctorCodeSequenceKey holds the last issued doctor code number.
const DoctorCodeSequenceKey = "doctor:code:seq"

const sequenceSyncTimeout = 5 * time.Second

// nextCodeScript raises the counter to at least ARGV[1] (the largest number
// present in the database) and then increments it, all in one step.
var nextCodeScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	local floor = tonumber(ARGV[1])
	if current < floor then
		current = floor
	end
	current = current + 1
	redis.call('SET', KEYS[1], current)
	return current
`)

// raiseCounterScript sets the counter to ARGV[1] only when it is behind.
var raiseCounterScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	local floor = tonumber(ARGV[1])
	if current < floor then
		redis.call('SET', KEYS[1], floor)
		return floor
	end
	return current
`)

// DoctorSequence issues public doctor codes (D1, D2, ...). Numbers are never
// reused, even after the doctor holding the highest code is deleted.
type DoctorSequence struct {
	redisClient *redis.Client
	doctorRepo  repository.DoctorRepository
	log         *logrus.Logger
}

func NewDoctorSequence(redisClient *redis.Client, doctorRepo repository.DoctorRepository, log *logrus.Logger) *DoctorSequence {
	return &DoctorSequence{
		redisClient: redisClient,
		doctorRepo:  doctorRepo,
		log:         log,
	}
}

// SyncOnStartup brings the counter up to the largest code stored in postgres.
// Should be called before accepting traffic.
func (s *DoctorSequence) SyncOnStartup(ctx context.Context, db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(ctx, sequenceSyncTimeout)
	defer cancel()

	max, err := s.doctorRepo.MaxCodeNumber(db.WithContext(ctx))
	if err != nil {
		s.log.Warnf("Failed to read max doctor code: %+v", err)
		return fmt.Errorf("read max doctor code: %w", err)
	}

	current, err := raiseCounterScript.Run(ctx, s.redisClient, []string{DoctorCodeSequenceKey}, max).Int64()
	if err != nil {
		s.log.Warnf("Failed to sync doctor code sequence: %+v", err)
		return fmt.Errorf("sync doctor code sequence: %w", err)
	}

	s.log.Infof("Doctor code sequence synced: last issued %s%d", entity.DoctorCodePrefix, current)
	return nil
}

// NextCode reserves the next code. db is read for the current maximum so a
// lost Redis key can never hand out a code that already exists.
func (s *DoctorSequence) NextCode(ctx context.Context, db *gorm.DB) (string, error) {
	max, err := s.doctorRepo.MaxCodeNumber(db)
	if err != nil {
		s.log.Warnf("Failed to read max doctor code: %+v", err)
		return "", fmt.Errorf("read max doctor code: %w", err)
	}

	next, err := nextCodeScript.Run(ctx, s.redisClient, []string{DoctorCodeSequenceKey}, max).Int64()
	if err != nil {
		s.log.Warnf("Failed to reserve doctor code: %+v", err)
		return "", fmt.Errorf("reserve doctor code: %w", err)
	}

	return entity.DoctorCodePrefix + strconv.FormatInt(next, 10), nil
}
