package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cnc-capture/capture/internal/store/model"
)

// Identity is the read path over provisioned operators and machines. No
// update or delete operations exist: provisioning is external to the service.
type Identity interface {
	GetOperator(ctx context.Context, id uint) (*model.Operator, error)
	GetMachine(ctx context.Context, id uint) (*model.Machine, error)
	ListOperators(ctx context.Context) (model.OperatorList, error)
	ListMachines(ctx context.Context) (model.MachineList, error)
	InitialMigration() error
}

type IdentityStore struct {
	db *gorm.DB
}

// Make sure we conform to Identity interface
var _ Identity = (*IdentityStore)(nil)

func NewIdentityStore(db *gorm.DB) Identity {
	return &IdentityStore{db: db}
}

func (s *IdentityStore) InitialMigration() error {
	if err := s.db.AutoMigrate(&model.Operator{}); err != nil {
		return err
	}
	return s.db.AutoMigrate(&model.Machine{})
}

func (s *IdentityStore) GetOperator(ctx context.Context, id uint) (*model.Operator, error) {
	var operator model.Operator
	result := s.getDB(ctx).First(&operator, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying operator: %w", result.Error)
	}
	return &operator, nil
}

func (s *IdentityStore) GetMachine(ctx context.Context, id uint) (*model.Machine, error) {
	var machine model.Machine
	result := s.getDB(ctx).First(&machine, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying machine: %w", result.Error)
	}
	return &machine, nil
}

func (s *IdentityStore) ListOperators(ctx context.Context) (model.OperatorList, error) {
	var operators model.OperatorList
	result := s.getDB(ctx).Model(&model.Operator{}).Order("id").Find(&operators)
	if result.Error != nil {
		return nil, result.Error
	}
	return operators, nil
}

func (s *IdentityStore) ListMachines(ctx context.Context) (model.MachineList, error) {
	var machines model.MachineList
	result := s.getDB(ctx).Model(&model.Machine{}).Order("id").Find(&machines)
	if result.Error != nil {
		return nil, result.Error
	}
	return machines, nil
}

func (s *IdentityStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
