package service

import "fmt"

type ErrValidation struct {
	error
}

func NewErrValidation(message string) *ErrValidation {
	return &ErrValidation{fmt.Errorf("bad request: %s", message)}
}

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uint, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %d not found", resourceType, id)}
}

func NewErrJobNotFound(id uint) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "job")
}

func NewErrOperatorNotFound(id uint) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "operator")
}

func NewErrMachineNotFound(id uint) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "machine")
}

type ErrConcurrentUpdate struct {
	error
}

func NewErrConcurrentUpdate(jobID uint) *ErrConcurrentUpdate {
	return &ErrConcurrentUpdate{fmt.Errorf("job %d was modified concurrently, retry the scan", jobID)}
}
