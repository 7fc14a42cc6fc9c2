package entity

import "time"

// DoctorCodePrefix prefixes the public doctor identifier (D1, D2, ...).
const DoctorCodePrefix = "D"

// Doctor is a directory entry. Code is the public identifier; ID never leaves the service.
type Doctor struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Code         string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Hospital     string    `gorm:"type:varchar(255);not null" json:"hospital"`
	Speciality   string    `gorm:"type:varchar(255);not null;index" json:"speciality"`
	Availability JSON      `gorm:"type:jsonb" json:"availability"`
	ProfilePhoto *string   `gorm:"type:text" json:"profilePhoto"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Doctor) TableName() string {
	return "doctors"
}
