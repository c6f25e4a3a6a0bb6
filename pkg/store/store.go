package store

import "nodepanel/pkg/model"

// Store defines the persistence layer for users, nodes and settings.
// Backed by MySQL in production and by an in-memory implementation for
// dev mode and tests.
type Store interface {
	CreateUser(model.User) (model.User, error)
	GetUserByEmail(email string) (model.User, bool, error)
	SaveUser(model.User) error

	CreateNode(model.Node) (model.Node, error)
	GetNode(id uint) (model.Node, bool, error)
	GetNodeByOwner(name, email string) (model.Node, bool, error)
	SaveNode(model.Node) error
	ListNodes() ([]model.Node, error)
	ListNodesByOwner(email string) ([]model.Node, error)

	GetSetting(key string) (string, bool, error)
	PutSetting(key, value string) error

	Ping() error
}
