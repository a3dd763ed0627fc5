package repository

import (
	"lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("lectures.position ASC")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindByIDWithStudents(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("lectures.position ASC")
		}).
		Preload("StudentsEnrolled", func(db *gorm.DB) *gorm.DB {
			return db.Order("users.id")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) List(publishedOnly bool, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	q := r.DB.Model(&model.Course{})
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) ListByIDs(ids []uint) ([]model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []model.Course
	err := r.DB.Where("id IN ?", ids).Order("id").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListByTeacher(teacherID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("teacher_id = ?", teacherID).Order("id").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Lecture{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.LectureCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
}

func (r *CourseRepository) SetPublished(id uint, published bool) error {
	updates := map[string]interface{}{"published": published}
	if published {
		updates["publish_at"] = nil
	}
	return r.DB.Model(&model.Course{}).Where("id = ?", id).Updates(updates).Error
}

func (r *CourseRepository) SetPublishAt(id uint, at time.Time) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", id).Update("publish_at", at).Error
}

// FindDueScheduled returns unpublished courses whose scheduled publish time
// has passed.
func (r *CourseRepository) FindDueScheduled(now time.Time) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.
		Where("published = ? AND publish_at IS NOT NULL AND publish_at <= ?", false, now).
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) AddLecture(lecture *model.Lecture) error {
	return r.DB.Create(lecture).Error
}

func (r *CourseRepository) FindLecture(id uint) (*model.Lecture, error) {
	var lecture model.Lecture
	err := r.DB.First(&lecture, id).Error
	return &lecture, err
}

func (r *CourseRepository) SaveLecture(lecture *model.Lecture) error {
	return r.DB.Save(lecture).Error
}

func (r *CourseRepository) DeleteLecture(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lecture_id = ?", id).Delete(&model.LectureCompletion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Lecture{}, id).Error
	})
}

func (r *CourseRepository) CountLectures(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lecture{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *CourseRepository) MaxLecturePosition(courseID uint) (int, error) {
	var max *int
	err := r.DB.Model(&model.Lecture{}).
		Where("course_id = ?", courseID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}
