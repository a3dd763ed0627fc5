package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCourseUnavailable  = errors.New("course does not exist or is not published")
	ErrNotEnrolled        = errors.New("not enrolled in course")
	ErrLectureNotInCourse = errors.New("lecture does not belong to course")
	ErrLectureNotFound    = errors.New("lecture not found")
	ErrDraftNotFound      = errors.New("wizard draft not found or expired")
	ErrWizardStep         = errors.New("wizard step out of sequence")
	ErrWizardNotComplete  = errors.New("wizard has remaining steps")
)
