package model

import (
	"time"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Subtitle    string `gorm:"size:255" json:"subtitle"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:100;index" json:"category"`
	Thumbnail   string `gorm:"size:255" json:"thumbnail"`
	Price       int    `gorm:"default:0" json:"price"`

	TeacherID uint       `gorm:"index;not null" json:"teacherId"`
	Published bool       `gorm:"default:false" json:"published"`
	PublishAt *time.Time `json:"publishAt,omitempty"`

	// Lecture order defines the curriculum sequence.
	Lectures         []Lecture `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lectures,omitempty"`
	StudentsEnrolled []User    `gorm:"many2many:enrollments;" json:"studentsEnrolled,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lecture
type Lecture struct {
	BaseModel
	CourseID      uint   `gorm:"index;not null" json:"courseId"`
	Title         string `gorm:"size:255;not null" json:"title"`
	VideoURL      string `gorm:"size:512" json:"videoUrl"`
	Duration      int    `gorm:"default:0" json:"duration"` // seconds
	Position      int    `gorm:"default:0" json:"position"`
	IsPreviewFree bool   `gorm:"default:false" json:"isPreviewFree"`
}

func (Lecture) TableName() string {
	return "lectures"
}
