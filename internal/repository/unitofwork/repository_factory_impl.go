package unitofwork

import (
	"context"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db: db,
	}
}

func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	// A unit of work is short lived, one per operation. Each one drawing from
	// the shared pool keeps concurrent calls off any shared mutable handle.
	return NewUnitOfWork(f.db)
}
