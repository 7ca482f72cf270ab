package server

import (
	"errors"

	"github.com/L3n44nd/OnlineChatServer/pkg/store"
)

var errStoreDown = errors.New("database is locked")

// brokenStore is a CredentialStore whose every operation fails, simulating an
// unreachable database.
type brokenStore struct{}

func (brokenStore) CountByUsername(string) (int, error)          { return 0, errStoreDown }
func (brokenStore) Insert(string, string, string) (int64, error) { return 0, errStoreDown }
func (brokenStore) FetchAuth(string) (*store.Auth, error)        { return nil, errStoreDown }
func (brokenStore) UpdateUsername(int64, string) error           { return errStoreDown }
func (brokenStore) Close() error                                 { return nil }
