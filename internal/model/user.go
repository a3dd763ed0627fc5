package model

import (
	"time"
)

type UserRole string

const (
	Student    UserRole = "student"
	Teacher    UserRole = "teacher"
	Parent     UserRole = "parent"
	Admin      UserRole = "admin"
	Management UserRole = "management"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'student';index" json:"role"`
	Avatar   string   `gorm:"size:255" json:"avatar"`
	Disabled bool     `gorm:"default:false" json:"disabled"`

	LastLogin time.Time `gorm:"autoCreateTime" json:"lastLogin"`
	LastSeen  time.Time `gorm:"autoCreateTime" json:"lastSeen"`

	EnrolledCourses []Course `gorm:"many2many:enrollments;" json:"enrolledCourses,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// ParentLink connects a parent account to a student account so parent
// dashboards can read the student's progress snapshots.
type ParentLink struct {
	BaseModel
	ParentID  uint `gorm:"uniqueIndex:idx_parent_student;not null" json:"parentId"`
	StudentID uint `gorm:"uniqueIndex:idx_parent_student;not null" json:"studentId"`
}

func (ParentLink) TableName() string {
	return "parent_links"
}
