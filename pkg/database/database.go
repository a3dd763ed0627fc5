package database

import (
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

// Migrate wires the explicit enrollments join model to both many2many sides
// before AutoMigrate so gorm keeps a single membership table.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&model.User{}, "EnrolledCourses", &model.Enrollment{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&model.Course{}, "StudentsEnrolled", &model.Enrollment{}); err != nil {
		return err
	}

	return db.AutoMigrate(
		&model.User{},
		&model.ParentLink{},
		&model.Course{},
		&model.Lecture{},
		&model.Enrollment{},
		&model.LectureCompletion{},
	)
}
