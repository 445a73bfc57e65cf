// Package repo is the transactional persistence layer over the catalog
// schema. Multi-statement writes run inside a single transaction; a
// failed operation leaves the store unchanged.
package repo

import "gorm.io/gorm"

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
