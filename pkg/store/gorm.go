package store

import (
	"errors"

	"gorm.io/gorm"

	"nodepanel/pkg/model"
)

// GormStore persists through a gorm connection (MySQL in production).
// Each method is a single statement; concurrency safety relies on the
// row store's per-statement atomicity.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(u model.User) (model.User, error) {
	err := s.db.Create(&u).Error
	return u, err
}

func (s *GormStore) GetUserByEmail(email string) (model.User, bool, error) {
	var u model.User
	err := s.db.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	return u, true, nil
}

func (s *GormStore) SaveUser(u model.User) error {
	return s.db.Save(&u).Error
}

func (s *GormStore) CreateNode(n model.Node) (model.Node, error) {
	err := s.db.Create(&n).Error
	return n, err
}

func (s *GormStore) GetNode(id uint) (model.Node, bool, error) {
	var n model.Node
	err := s.db.First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Node{}, false, nil
	}
	if err != nil {
		return model.Node{}, false, err
	}
	return n, true, nil
}

func (s *GormStore) GetNodeByOwner(name, email string) (model.Node, bool, error) {
	var n model.Node
	err := s.db.Where("name = ? AND user_email = ?", name, email).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Node{}, false, nil
	}
	if err != nil {
		return model.Node{}, false, err
	}
	return n, true, nil
}

func (s *GormStore) SaveNode(n model.Node) error {
	return s.db.Save(&n).Error
}

func (s *GormStore) ListNodes() ([]model.Node, error) {
	var nodes []model.Node
	err := s.db.Order("id").Find(&nodes).Error
	return nodes, err
}

func (s *GormStore) ListNodesByOwner(email string) ([]model.Node, error) {
	var nodes []model.Node
	err := s.db.Where("user_email = ?", email).Order("id").Find(&nodes).Error
	return nodes, err
}

func (s *GormStore) GetSetting(key string) (string, bool, error) {
	var row model.Setting
	err := s.db.Where("`key` = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

func (s *GormStore) PutSetting(key, value string) error {
	var row model.Setting
	err := s.db.Where("`key` = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&model.Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	row.Value = value
	return s.db.Save(&row).Error
}

func (s *GormStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
