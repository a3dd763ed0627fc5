package service

import (
	"fmt"
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database migrated to the full
// schema. cache=shared with a single connection keeps the database alive for
// the whole test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type testEnv struct {
	db          *gorm.DB
	users       *repository.UserRepository
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	cache       *ProgressCache
	enrollment  *EnrollmentService
	catalog     *CatalogService
	auth        *AuthService
	user        *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	env := &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		courses:     repository.NewCourseRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
	}
	env.cache = NewProgressCache(nil)
	env.enrollment = NewEnrollmentService(env.courses, env.enrollments, env.users, env.cache, db)
	env.catalog = NewCatalogService(env.courses, env.enrollments, env.enrollment)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Wizard.DraftTTLMinutes = 60
	env.auth = NewAuthService(env.users, env.enrollment, cfg)
	env.user = NewUserService(env.users)

	return env
}

func (e *testEnv) seedUser(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) seedCourse(t *testing.T, title string, teacherID uint, published bool, lectures int) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:     title,
		TeacherID: teacherID,
		Published: published,
	}
	require.NoError(t, e.courses.Create(course))

	for i := 1; i <= lectures; i++ {
		lecture := &model.Lecture{
			CourseID: course.ID,
			Title:    fmt.Sprintf("%s lecture %d", title, i),
			Position: i,
		}
		require.NoError(t, e.courses.AddLecture(lecture))
	}

	full, err := e.courses.FindByID(course.ID)
	require.NoError(t, err)
	return full
}
