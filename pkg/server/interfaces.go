package server

import "github.com/L3n44nd/OnlineChatServer/pkg/store"

// CredentialStore defines the interface for credential store operations used
// by the server. This abstraction allows for easier testing and potential
// future storage backends.
type CredentialStore interface {
	CountByUsername(name string) (int, error)
	Insert(username, passwordHash, salt string) (int64, error)
	FetchAuth(username string) (*store.Auth, error)
	UpdateUsername(userID int64, newName string) error

	// Close the store
	Close() error
}
