package model

import (
	"math"
	"time"
)

// Enrollment is the join row behind User.EnrolledCourses and
// Course.StudentsEnrolled. Both directions read this one table.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID  uint      `gorm:"uniqueIndex:idx_user_course;not null" json:"courseId"`
	CreatedAt time.Time `json:"enrolledAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// LectureCompletion is one element of the completed set for a (user, course)
// pair. The unique index makes re-marking a lecture a no-op, so concurrent or
// out-of-order completions merge per lecture instead of overwriting each other.
type LectureCompletion struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_lecture;not null" json:"userId"`
	LectureID uint      `gorm:"uniqueIndex:idx_user_lecture;not null" json:"lectureId"`
	CourseID  uint      `gorm:"index;not null" json:"courseId"`
	CreatedAt time.Time `json:"completedAt"`
}

func (LectureCompletion) TableName() string {
	return "lecture_completions"
}

// ProgressRecord is the per-(user, course) snapshot served to clients and held
// in the progress cache. It is derived from lecture_completions, never stored
// as a row of its own.
// swagger:model ProgressRecord
type ProgressRecord struct {
	CourseID            uint   `json:"courseId"`
	Progress            int    `json:"progress"`
	CompletedLectureIDs []uint `json:"completedLectureIds"`
}

// ComputeProgress returns the percentage of completed lectures, rounded half
// up. A course with no lectures reports 0.
func ComputeProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}
