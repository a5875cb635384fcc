package app

import "example.com/mod/app/legacy"

// Service runs the application.
type Service struct {
	name string
}

// Runner starts things.
type Runner interface {
	Run()
}

// ErrStopped is returned after Stop.
var ErrStopped error

// Run calls into the legacy package.
func (s *Service) Run() {
	legacy.Old()
}

//nolint:unused // kept for debugging
func helper() {
	panic("unreachable")
}
